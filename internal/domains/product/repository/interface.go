package repository

import (
	"context"

	"github.com/google/uuid"

	"productflow-backend/internal/domains/product/model"
)

// ProductRepository persists product aggregates and their history.
//
// Update enforces optimistic locking: the stored row must still carry the
// version the caller read, and the write bumps it by one. A stale caller
// gets model.ErrVersionMismatch and must re-read before retrying.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	Update(ctx context.Context, p *model.Product) error
	ListByStages(ctx context.Context, stages []model.Stage) ([]*model.Product, error)

	AppendHistory(ctx context.Context, entry *model.HistoryEntry) error
	ListHistory(ctx context.Context, productID uuid.UUID) ([]*model.HistoryEntry, error)

	PurgeAll(ctx context.Context) error
}
