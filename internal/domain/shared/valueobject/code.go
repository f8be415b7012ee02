package valueobject

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var skuPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9\-]{1,31}$`)

// SKU is a validated stock keeping unit code: 2-32 uppercase alphanumeric
// characters and dashes, starting with an alphanumeric. Lowercase input is
// normalized to uppercase.
type SKU string

// NewSKU validates and normalizes a SKU.
func NewSKU(raw string) (SKU, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	if !skuPattern.MatchString(normalized) {
		return "", fmt.Errorf("malformed SKU %q: must be 2-32 uppercase alphanumeric characters or dashes", raw)
	}
	return SKU(normalized), nil
}

// String returns the SKU as a string.
func (s SKU) String() string {
	return string(s)
}

// EntryNumber is a human-readable stock entry number, unique per company,
// in the form SE-YYYYMMDD-NNNN.
type EntryNumber string

// EntryNumberPrefix is the prefix for all stock entry numbers.
const EntryNumberPrefix = "SE"

var entryNumberPattern = regexp.MustCompile(`^SE-\d{8}-\d{4,}$`)

// NewEntryNumber builds an entry number from a date and a per-day sequence.
func NewEntryNumber(date time.Time, sequence int64) EntryNumber {
	return EntryNumber(fmt.Sprintf("%s-%s-%04d", EntryNumberPrefix, date.Format("20060102"), sequence))
}

// ParseEntryNumber validates an entry number string.
func ParseEntryNumber(raw string) (EntryNumber, error) {
	if !entryNumberPattern.MatchString(raw) {
		return "", fmt.Errorf("malformed entry number %q: expected SE-YYYYMMDD-NNNN", raw)
	}
	return EntryNumber(raw), nil
}

// String returns the entry number as a string.
func (n EntryNumber) String() string {
	return string(n)
}
