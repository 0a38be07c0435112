// Package inmemory is the map-backed transaction store. Data is lost on
// restart; for persistence use the BigQuery-backed store.
package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/dvloznov/finance-assistant/internal/domain"
	"github.com/dvloznov/finance-assistant/internal/store"
)

// Store is an in-memory implementation of store.Store.
// It is safe for concurrent use; reads work on copies so callers can never
// mutate stored state behind the lock's back.
type Store struct {
	mu  sync.RWMutex
	txs map[string]domain.Transaction
}

// New creates an empty in-memory transaction store.
func New() *Store {
	return &Store{
		txs: make(map[string]domain.Transaction),
	}
}

// Create implements store.Store. It assigns the record its ID.
func (s *Store) Create(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx.ID = uuid.New().String()
	s.txs[tx.ID] = tx
	return tx, nil
}

// Update implements store.Store. Updating an unknown record fails with
// store.ErrNotFound.
func (s *Store) Update(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.txs[tx.ID]; !exists {
		return domain.Transaction{}, store.ErrNotFound
	}
	s.txs[tx.ID] = tx
	return tx, nil
}

// Delete implements store.Store. Deleting an absent record is a no-op.
func (s *Store) Delete(ctx context.Context, tx domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.txs, tx.ID)
	return nil
}

// FindAll implements store.Store.
func (s *Store) FindAll(ctx context.Context) ([]domain.Transaction, error) {
	return s.FindByFilter(ctx, nil)
}

// FindByFilter implements store.Store. Results are ordered by date, then ID,
// so repeated queries over the same snapshot are deterministic.
func (s *Store) FindByFilter(ctx context.Context, preds []store.Predicate) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Transaction, 0, len(s.txs))
	for _, tx := range s.txs {
		if store.Matches(tx, preds) {
			result = append(result, tx)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// Ensure Store implements the store contract.
var _ store.Store = (*Store)(nil)
