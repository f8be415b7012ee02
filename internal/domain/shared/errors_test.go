package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_Is(t *testing.T) {
	err := NewNotFoundError("ITEM_NOT_FOUND", "Item not found")

	t.Run("matches the kind sentinel", func(t *testing.T) {
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.False(t, errors.Is(err, ErrValidation))
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("loading item: %w", err)
		assert.True(t, errors.Is(wrapped, ErrNotFound))
	})

	t.Run("code-level matching requires equal codes", func(t *testing.T) {
		same := &DomainError{Kind: KindNotFound, Code: "ITEM_NOT_FOUND"}
		other := &DomainError{Kind: KindNotFound, Code: "BATCH_NOT_FOUND"}
		assert.True(t, errors.Is(err, same))
		assert.False(t, errors.Is(err, other))
	})
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(NewValidationError("X", "x")))
	assert.Equal(t, KindConcurrencyConflict, KindOf(fmt.Errorf("wrap: %w", NewConcurrencyConflict("Y", "y"))))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}

func TestAsDomainError(t *testing.T) {
	var target *DomainError

	require.True(t, AsDomainError(fmt.Errorf("wrap: %w", NewInvariantViolation("BATCH_CONSERVATION", "boom")), &target))
	assert.Equal(t, "BATCH_CONSERVATION", target.Code)

	assert.False(t, AsDomainError(errors.New("plain"), &target))
}
