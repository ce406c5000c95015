package repository

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"agrichain/internal/domain"
)

// MemoryStore keeps the ledger in process memory. It is safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	batches  map[string]domain.Batch
	products map[string]domain.Product
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		batches:  make(map[string]domain.Batch),
		products: make(map[string]domain.Product),
	}
}

// NewSeededMemoryStore returns a MemoryStore holding the mock ledger data.
func NewSeededMemoryStore() *MemoryStore {
	s := NewMemoryStore()
	for _, b := range SeedBatches() {
		s.batches[b.ID] = b
	}
	for _, p := range SeedProducts() {
		s.products[p.Details.ID] = p
	}
	return s
}

func (s *MemoryStore) ListBatches(_ context.Context) ([]domain.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Batch, 0, len(s.batches))
	for _, b := range s.batches {
		out = append(out, b)
	}
	return out, nil
}

func (s *MemoryStore) GetBatch(_ context.Context, id string) (domain.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.batches[id]
	if !ok {
		return domain.Batch{}, fmt.Errorf("repository: batch %q: %w", id, domain.ErrNotFound)
	}
	return b, nil
}

func (s *MemoryStore) PutBatch(_ context.Context, b domain.Batch) error {
	if b.ID == "" {
		return fmt.Errorf("repository: PutBatch: id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[b.ID] = b
	return nil
}

func (s *MemoryStore) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, cloneProduct(p))
	}
	return out, nil
}

func (s *MemoryStore) GetProduct(_ context.Context, id string) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("repository: product %q: %w", id, domain.ErrNotFound)
	}
	return cloneProduct(p), nil
}

func (s *MemoryStore) PutProduct(_ context.Context, p domain.Product) error {
	if p.Details.ID == "" {
		return fmt.Errorf("repository: PutProduct: id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.Details.ID] = cloneProduct(p)
	return nil
}

// cloneProduct copies the history slice and data maps so callers cannot
// mutate stored state.
func cloneProduct(p domain.Product) domain.Product {
	history := make([]domain.TimelineEvent, len(p.History))
	for i, ev := range p.History {
		ev.Data = maps.Clone(ev.Data)
		history[i] = ev
	}
	p.History = history
	return p
}
