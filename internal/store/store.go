// Package store defines the transaction record store contract and the filter
// compiler that turns search criteria into predicates the store executes.
package store

import (
	"context"
	"errors"

	"github.com/dvloznov/finance-assistant/internal/domain"
)

// ErrNotFound is returned when a lookup that requires a record finds none.
var ErrNotFound = errors.New("transaction not found")

// Store is the record store for transactions. Implementations must serialize
// conflicting writes per record and give each query a consistent snapshot.
type Store interface {
	// Create persists a new transaction and returns it with its
	// store-assigned ID.
	Create(ctx context.Context, tx domain.Transaction) (domain.Transaction, error)

	// Update persists changes to an existing transaction.
	Update(ctx context.Context, tx domain.Transaction) (domain.Transaction, error)

	// Delete removes a transaction. Deleting an absent record is a no-op.
	Delete(ctx context.Context, tx domain.Transaction) error

	// FindAll returns every stored transaction.
	FindAll(ctx context.Context) ([]domain.Transaction, error)

	// FindByFilter returns every transaction matching all predicates.
	// An empty predicate set selects all records.
	FindByFilter(ctx context.Context, preds []Predicate) ([]domain.Transaction, error)
}
