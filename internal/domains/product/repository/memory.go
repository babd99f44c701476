package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"productflow-backend/internal/domains/product/model"
)

// =====================================================
// IN-MEMORY REPOSITORY (TESTS / LOCAL DEV)
// =====================================================

// MemoryProductRepository keeps aggregates in process memory. It applies the
// same version discipline as the postgres store so service tests exercise
// real optimistic-locking behavior.
type MemoryProductRepository struct {
	mu       sync.RWMutex
	products map[uuid.UUID]*model.Product
	history  map[uuid.UUID][]*model.HistoryEntry
}

func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[uuid.UUID]*model.Product),
		history:  make(map[uuid.UUID][]*model.HistoryEntry),
	}
}

func (r *MemoryProductRepository) Create(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products[p.ID] = p.Clone()
	return nil
}

func (r *MemoryProductRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, model.ErrProductNotFound
	}
	return p.Clone(), nil
}

func (r *MemoryProductRepository) Update(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.products[p.ID]
	if !ok {
		return model.ErrProductNotFound
	}
	if stored.Version != p.Version {
		return model.ErrVersionMismatch
	}

	next := p.Clone()
	next.Version++
	r.products[p.ID] = next
	p.Version++
	return nil
}

func (r *MemoryProductRepository) ListByStages(_ context.Context, stages []model.Stage) ([]*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[model.Stage]bool, len(stages))
	for _, s := range stages {
		wanted[s] = true
	}

	result := []*model.Product{}
	for _, p := range r.products {
		if len(stages) > 0 && !wanted[p.Stage] {
			continue
		}
		result = append(result, p.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

func (r *MemoryProductRepository) AppendHistory(_ context.Context, entry *model.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *entry
	r.history[entry.ProductID] = append(r.history[entry.ProductID], &copied)
	return nil
}

func (r *MemoryProductRepository) ListHistory(_ context.Context, productID uuid.UUID) ([]*model.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.history[productID]
	result := make([]*model.HistoryEntry, 0, len(entries))
	// Stored in append order; returned newest first.
	for i := len(entries) - 1; i >= 0; i-- {
		copied := *entries[i]
		result = append(result, &copied)
	}
	return result, nil
}

func (r *MemoryProductRepository) PurgeAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products = make(map[uuid.UUID]*model.Product)
	r.history = make(map[uuid.UUID][]*model.HistoryEntry)
	return nil
}
