package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// postRetries bounds the automatic retry of a posting that lost an
// optimistic-lock race. Each attempt reloads everything from scratch.
const postRetries = 3

// StockEntryService handles the draft lifecycle and posting of stock entries.
type StockEntryService struct {
	entryRepo      inventory.StockEntryRepository
	batchRepo      inventory.BatchRepository
	scope          TransactionScope
	eventPublisher shared.EventPublisher
}

// NewStockEntryService creates a StockEntryService.
func NewStockEntryService(
	entryRepo inventory.StockEntryRepository,
	batchRepo inventory.BatchRepository,
	scope TransactionScope,
) *StockEntryService {
	return &StockEntryService{
		entryRepo: entryRepo,
		batchRepo: batchRepo,
		scope:     scope,
	}
}

// SetEventPublisher sets the publisher for domain events raised by postings.
func (s *StockEntryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvents publishes collected events. Errors are handled by the bus,
// never propagated into the command result.
func (s *StockEntryService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}

// CreateEntry opens a draft stock entry, optionally pre-populated with detail
// and cost lines.
func (s *StockEntryService) CreateEntry(ctx context.Context, companyID uuid.UUID, req CreateStockEntryRequest) (*StockEntryResponse, error) {
	entryDate := time.Now()
	if req.EntryDate != nil {
		entryDate = *req.EntryDate
	}

	number, err := s.entryRepo.NextEntryNumber(ctx, companyID, entryDate)
	if err != nil {
		return nil, err
	}

	entry, err := inventory.NewStockEntry(companyID, number, entryDate)
	if err != nil {
		return nil, err
	}
	if req.ReferenceType != "" || req.ReferenceID != "" || req.Notes != "" {
		if err := entry.Update(req.ReferenceType, req.ReferenceID, req.Notes); err != nil {
			return nil, err
		}
	}
	for _, d := range req.Details {
		if _, err := entry.AddDetail(toDetailLine(d)); err != nil {
			return nil, err
		}
	}
	for _, c := range req.Costs {
		if _, err := entry.AddAdditionalCost(c.Description, c.Amount); err != nil {
			return nil, err
		}
	}

	if err := s.entryRepo.Save(ctx, entry); err != nil {
		return nil, err
	}
	return ToStockEntryResponse(entry), nil
}

// GetEntry returns an entry with its lines.
func (s *StockEntryService) GetEntry(ctx context.Context, companyID, entryID uuid.UUID) (*StockEntryResponse, error) {
	entry, err := s.entryRepo.FindByID(ctx, companyID, entryID)
	if err != nil {
		return nil, err
	}
	return ToStockEntryResponse(entry), nil
}

// GetEntryByNumber returns an entry located by its human-readable number.
func (s *StockEntryService) GetEntryByNumber(ctx context.Context, companyID uuid.UUID, number string) (*StockEntryResponse, error) {
	entry, err := s.entryRepo.FindByEntryNumber(ctx, companyID, number)
	if err != nil {
		return nil, err
	}
	return ToStockEntryResponse(entry), nil
}

// ListEntries returns entries filtered by state and date range.
func (s *StockEntryService) ListEntries(ctx context.Context, companyID uuid.UUID, state inventory.EntryState, from, to *time.Time, filter shared.Filter) (shared.Paginated[StockEntryResponse], error) {
	entries, err := s.entryRepo.FindAll(ctx, companyID, state, from, to, filter)
	if err != nil {
		return shared.Paginated[StockEntryResponse]{}, err
	}
	total, err := s.entryRepo.Count(ctx, companyID, state)
	if err != nil {
		return shared.Paginated[StockEntryResponse]{}, err
	}

	items := make([]StockEntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, *ToStockEntryResponse(&entries[i]))
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// AddDetail appends a detail line to a draft entry.
func (s *StockEntryService) AddDetail(ctx context.Context, companyID, entryID uuid.UUID, req DetailRequest) (*StockEntryResponse, error) {
	entry, err := s.entryRepo.FindByID(ctx, companyID, entryID)
	if err != nil {
		return nil, err
	}
	if _, err := entry.AddDetail(toDetailLine(req)); err != nil {
		return nil, err
	}
	if err := s.entryRepo.Save(ctx, entry); err != nil {
		return nil, err
	}
	return ToStockEntryResponse(entry), nil
}

// RemoveDetail removes a detail line from a draft entry.
func (s *StockEntryService) RemoveDetail(ctx context.Context, companyID, entryID, detailID uuid.UUID) (*StockEntryResponse, error) {
	entry, err := s.entryRepo.FindByID(ctx, companyID, entryID)
	if err != nil {
		return nil, err
	}
	if err := entry.RemoveDetail(detailID); err != nil {
		return nil, err
	}
	if err := s.entryRepo.Save(ctx, entry); err != nil {
		return nil, err
	}
	return ToStockEntryResponse(entry), nil
}

// AddAdditionalCost appends a landed-cost line to a draft entry.
func (s *StockEntryService) AddAdditionalCost(ctx context.Context, companyID, entryID uuid.UUID, req AdditionalCostIn) (*StockEntryResponse, error) {
	entry, err := s.entryRepo.FindByID(ctx, companyID, entryID)
	if err != nil {
		return nil, err
	}
	if _, err := entry.AddAdditionalCost(req.Description, req.Amount); err != nil {
		return nil, err
	}
	if err := s.entryRepo.Save(ctx, entry); err != nil {
		return nil, err
	}
	return ToStockEntryResponse(entry), nil
}

// RemoveAdditionalCost removes a landed-cost line from a draft entry.
func (s *StockEntryService) RemoveAdditionalCost(ctx context.Context, companyID, entryID, costID uuid.UUID) (*StockEntryResponse, error) {
	entry, err := s.entryRepo.FindByID(ctx, companyID, entryID)
	if err != nil {
		return nil, err
	}
	if err := entry.RemoveAdditionalCost(costID); err != nil {
		return nil, err
	}
	if err := s.entryRepo.Save(ctx, entry); err != nil {
		return nil, err
	}
	return ToStockEntryResponse(entry), nil
}

// UpdateEntry edits draft entry metadata.
func (s *StockEntryService) UpdateEntry(ctx context.Context, companyID, entryID uuid.UUID, req UpdateStockEntryRequest) (*StockEntryResponse, error) {
	entry, err := s.entryRepo.FindByID(ctx, companyID, entryID)
	if err != nil {
		return nil, err
	}
	if err := entry.Update(req.ReferenceType, req.ReferenceID, req.Notes); err != nil {
		return nil, err
	}
	if err := s.entryRepo.Save(ctx, entry); err != nil {
		return nil, err
	}
	return ToStockEntryResponse(entry), nil
}

// DeleteEntry removes a draft entry. Posted entries are never deletable.
func (s *StockEntryService) DeleteEntry(ctx context.Context, companyID, entryID uuid.UUID) error {
	entry, err := s.entryRepo.FindByID(ctx, companyID, entryID)
	if err != nil {
		return err
	}
	if !entry.IsDraft() {
		return shared.NewInvalidStateError("ENTRY_NOT_DRAFT",
			"Only draft entries can be deleted")
	}
	return s.entryRepo.Delete(ctx, companyID, entryID)
}

// RejectEntry marks a draft entry as failed with a reason, terminally.
func (s *StockEntryService) RejectEntry(ctx context.Context, companyID, entryID uuid.UUID, req RejectStockEntryRequest) (*StockEntryResponse, error) {
	entry, err := s.entryRepo.FindByID(ctx, companyID, entryID)
	if err != nil {
		return nil, err
	}
	if err := entry.MarkAsFailed(req.Reason); err != nil {
		return nil, err
	}
	if err := s.entryRepo.Save(ctx, entry); err != nil {
		return nil, err
	}
	return ToStockEntryResponse(entry), nil
}

// SubmitEntry posts a draft entry. The whole posting runs in one transaction;
// a lost optimistic-lock race is retried from scratch a bounded number of
// times. Domain events are published only after the transaction commits.
func (s *StockEntryService) SubmitEntry(ctx context.Context, companyID, entryID, postedBy uuid.UUID) (*StockEntryResponse, error) {
	var result *inventory.PostResult

	var err error
	for attempt := 0; attempt < postRetries; attempt++ {
		result, err = s.postOnce(ctx, companyID, entryID, postedBy)
		if err == nil {
			break
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, result.Events)
	return ToStockEntryResponse(result.Entry), nil
}

// postOnce runs a single posting attempt inside a transaction scope.
func (s *StockEntryService) postOnce(ctx context.Context, companyID, entryID, postedBy uuid.UUID) (*inventory.PostResult, error) {
	var result *inventory.PostResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		entry, err := repos.EntryRepo().FindByID(ctx, companyID, entryID)
		if err != nil {
			return err
		}
		posting := inventory.NewPostingService(
			repos.ItemRepo(),
			repos.EntryRepo(),
			repos.MovementRepo(),
			repos.LevelRepo(),
			repos.BatchRepo(),
			repos.LayerRepo(),
		)
		result, err = posting.Post(ctx, entry, postedBy)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReceiveStock creates a one-line receipt entry and posts it in a single
// call. When a batch number is given the batch is resolved or registered
// first, and the receipt line is booked against it. A lost optimistic-lock
// race is retried from scratch with the same budget as SubmitEntry.
func (s *StockEntryService) ReceiveStock(ctx context.Context, companyID uuid.UUID, req ReceiveStockRequest) (*StockEntryResponse, error) {
	if !req.Quantity.IsPositive() {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Receive quantity must be positive")
	}

	var result *inventory.PostResult

	var err error
	for attempt := 0; attempt < postRetries; attempt++ {
		result, err = s.receiveOnce(ctx, companyID, req)
		if err == nil {
			break
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, result.Events)
	return ToStockEntryResponse(result.Entry), nil
}

// receiveOnce runs a single create-and-post attempt inside a transaction scope.
func (s *StockEntryService) receiveOnce(ctx context.Context, companyID uuid.UUID, req ReceiveStockRequest) (*inventory.PostResult, error) {
	var result *inventory.PostResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var batchID *uuid.UUID
		if req.BatchNumber != "" {
			batch, err := s.resolveBatch(ctx, repos.BatchRepo(), companyID, req)
			if err != nil {
				return err
			}
			id := batch.ID
			batchID = &id
		}

		number, err := repos.EntryRepo().NextEntryNumber(ctx, companyID, time.Now())
		if err != nil {
			return err
		}
		entry, err := inventory.NewStockEntry(companyID, number, time.Now())
		if err != nil {
			return err
		}
		if err := entry.Update(req.ReferenceType, req.ReferenceID, ""); err != nil {
			return err
		}
		if _, err := entry.AddDetail(inventory.DetailLine{
			ItemID:       req.ItemID,
			WarehouseID:  req.WarehouseID,
			Bin:          req.Bin,
			MovementType: inventory.MovementReceipt,
			Quantity:     req.Quantity,
			Rate:         req.Rate,
			BatchID:      batchID,
		}); err != nil {
			return err
		}
		if err := repos.EntryRepo().Save(ctx, entry); err != nil {
			return err
		}

		posting := inventory.NewPostingService(
			repos.ItemRepo(),
			repos.EntryRepo(),
			repos.MovementRepo(),
			repos.LevelRepo(),
			repos.BatchRepo(),
			repos.LayerRepo(),
		)
		result, err = posting.Post(ctx, entry, req.PostedBy)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// resolveBatch finds the referenced batch or registers a new one. A zero
// initial quantity is used for new batches; the receipt itself books the
// received quantity through the batch counter.
func (s *StockEntryService) resolveBatch(ctx context.Context, repo inventory.BatchRepository, companyID uuid.UUID, req ReceiveStockRequest) (*inventory.Batch, error) {
	batch, err := repo.FindByNumber(ctx, companyID, req.ItemID, req.BatchNumber)
	if err == nil {
		return batch, nil
	}
	if shared.KindOf(err) != shared.KindNotFound {
		return nil, err
	}

	batch, err = inventory.NewBatch(companyID, req.ItemID, req.BatchNumber, decimal.Zero, nil, req.ExpiryDate)
	if err != nil {
		return nil, err
	}
	if err := repo.Save(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// toDetailLine converts a request line to the domain shape.
func toDetailLine(d DetailRequest) inventory.DetailLine {
	return inventory.DetailLine{
		ItemID:        d.ItemID,
		WarehouseID:   d.WarehouseID,
		Bin:           d.Bin,
		MovementType:  inventory.MovementType(d.MovementType),
		Quantity:      d.Quantity,
		Rate:          d.Rate,
		BatchID:       d.BatchID,
		BatchMovement: inventory.BatchMovementKind(d.BatchMovement),
		SerialNo:      d.SerialNo,
		Remarks:       d.Remarks,
		AllowNegative: d.AllowNegative,
	}
}
