package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// BatchService handles batch registration and lifecycle.
type BatchService struct {
	batchRepo      inventory.BatchRepository
	itemLookup     catalog.ItemLookup
	eventPublisher shared.EventPublisher
}

// NewBatchService creates a BatchService.
func NewBatchService(batchRepo inventory.BatchRepository, itemLookup catalog.ItemLookup) *BatchService {
	return &BatchService{
		batchRepo:  batchRepo,
		itemLookup: itemLookup,
	}
}

// SetEventPublisher sets the publisher for batch domain events.
func (s *BatchService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// publishDomainEvents publishes a batch's collected events and clears them.
func (s *BatchService) publishDomainEvents(ctx context.Context, batch *inventory.Batch) {
	if s.eventPublisher == nil {
		return
	}
	events := batch.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	batch.ClearDomainEvents()
}

// CreateBatch registers a batch for an item. The (item, batch number) pair
// must be unique within the company.
func (s *BatchService) CreateBatch(ctx context.Context, companyID uuid.UUID, req CreateBatchRequest) (*BatchResponse, error) {
	item, err := s.itemLookup.Get(ctx, companyID, req.ItemID)
	if err != nil {
		return nil, err
	}
	if !item.Active {
		return nil, shared.NewInvalidStateError("ITEM_INACTIVE",
			"Cannot register a batch for inactive item "+item.SKU)
	}

	exists, err := s.batchRepo.ExistsByNumber(ctx, companyID, req.ItemID, req.BatchNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewValidationError("DUPLICATE_BATCH_NUMBER",
			"Batch number "+req.BatchNumber+" already exists for item "+item.SKU)
	}

	batch, err := inventory.NewBatch(companyID, req.ItemID, req.BatchNumber, req.InitialQuantity, req.ManufacturingDate, req.ExpiryDate)
	if err != nil {
		return nil, err
	}
	if req.WarrantyExpiry != nil {
		batch.SetWarrantyExpiry(req.WarrantyExpiry)
	}
	if req.SupplierReference != "" {
		batch.SetSupplierReference(req.SupplierReference)
	}

	if err := s.batchRepo.Save(ctx, batch); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, batch)

	return ToBatchResponse(batch), nil
}

// GetBatch returns a batch by ID.
func (s *BatchService) GetBatch(ctx context.Context, companyID, batchID uuid.UUID) (*BatchResponse, error) {
	batch, err := s.batchRepo.FindByID(ctx, companyID, batchID)
	if err != nil {
		return nil, err
	}
	return ToBatchResponse(batch), nil
}

// ListBatches returns the batches of an item, optionally only those with
// on-hand quantity.
func (s *BatchService) ListBatches(ctx context.Context, companyID, itemID uuid.UUID, onlyWithStock bool) ([]BatchResponse, error) {
	batches, err := s.batchRepo.FindByItem(ctx, companyID, itemID, onlyWithStock)
	if err != nil {
		return nil, err
	}
	return toBatchResponses(batches), nil
}

// ListExpired returns enabled batches past their expiry date.
func (s *BatchService) ListExpired(ctx context.Context, companyID uuid.UUID) ([]BatchResponse, error) {
	batches, err := s.batchRepo.FindExpired(ctx, companyID, time.Now())
	if err != nil {
		return nil, err
	}
	return toBatchResponses(batches), nil
}

// ListExpiringWithin returns enabled batches expiring inside the window.
func (s *BatchService) ListExpiringWithin(ctx context.Context, companyID uuid.UUID, days int) ([]BatchResponse, error) {
	if days < 0 {
		return nil, shared.NewValidationError("INVALID_WINDOW", "Expiry window cannot be negative")
	}
	batches, err := s.batchRepo.FindExpiringWithin(ctx, companyID, days)
	if err != nil {
		return nil, err
	}
	return toBatchResponses(batches), nil
}

// SetRetainSample records the retained-sample quantity and location.
func (s *BatchService) SetRetainSample(ctx context.Context, companyID, batchID uuid.UUID, req SetRetainSampleRequest) (*BatchResponse, error) {
	batch, err := s.batchRepo.FindByID(ctx, companyID, batchID)
	if err != nil {
		return nil, err
	}
	if err := batch.SetRetainSample(req.Quantity, req.Location); err != nil {
		return nil, err
	}
	if err := s.batchRepo.Save(ctx, batch); err != nil {
		return nil, err
	}
	return ToBatchResponse(batch), nil
}

// DisableBatch marks a batch unusable for future movements.
func (s *BatchService) DisableBatch(ctx context.Context, companyID, batchID uuid.UUID) (*BatchResponse, error) {
	batch, err := s.batchRepo.FindByID(ctx, companyID, batchID)
	if err != nil {
		return nil, err
	}
	batch.Disable()
	if err := s.batchRepo.Save(ctx, batch); err != nil {
		return nil, err
	}
	return ToBatchResponse(batch), nil
}

func toBatchResponses(batches []inventory.Batch) []BatchResponse {
	out := make([]BatchResponse, 0, len(batches))
	for i := range batches {
		out = append(out, *ToBatchResponse(&batches[i]))
	}
	return out
}
