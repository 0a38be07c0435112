// Package bq is the BigQuery-backed transaction store. The predicate set is
// compiled into a parameterized WHERE clause; the storage engine and indexing
// stay BigQuery's concern.
package bq

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/dvloznov/finance-assistant/internal/domain"
	"github.com/dvloznov/finance-assistant/internal/store"
)

const transactionsTable = "transactions"

// transactionRow maps a domain transaction onto the assistant.transactions
// table schema.
type transactionRow struct {
	TransactionID string    `bigquery:"transaction_id"` // REQUIRED
	Amount        float64   `bigquery:"amount"`         // REQUIRED FLOAT64
	Type          string    `bigquery:"type"`           // REQUIRED STRING
	Category      string    `bigquery:"category"`       // REQUIRED STRING
	Description   string    `bigquery:"description"`    // NULLABLE STRING
	OccurredAt    time.Time `bigquery:"occurred_at"`    // REQUIRED TIMESTAMP
}

// Store is a BigQuery implementation of store.Store.
type Store struct {
	client  *bigquery.Client
	dataset string
}

// New creates a BigQuery transaction store on the given dataset.
func New(client *bigquery.Client, dataset string) *Store {
	return &Store{client: client, dataset: dataset}
}

// Create implements store.Store. It assigns the record its ID before insert.
func (s *Store) Create(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	tx.ID = uuid.New().String()

	inserter := s.client.Dataset(s.dataset).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, toRow(tx)); err != nil {
		return domain.Transaction{}, fmt.Errorf("Create: inserting row: %w", err)
	}
	return tx, nil
}

// Update implements store.Store via DML so the write is atomic per record.
func (s *Store) Update(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	q := s.client.Query(fmt.Sprintf(`
		UPDATE %s
		SET amount = @amount,
		    type = @type,
		    category = @category,
		    description = @description,
		    occurred_at = @occurred_at
		WHERE transaction_id = @transaction_id
	`, s.tableRef()))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "amount", Value: tx.Amount},
		{Name: "type", Value: string(tx.Type)},
		{Name: "category", Value: string(tx.Category)},
		{Name: "description", Value: tx.Description},
		{Name: "occurred_at", Value: tx.Date},
		{Name: "transaction_id", Value: tx.ID},
	}

	if err := s.run(ctx, q); err != nil {
		return domain.Transaction{}, fmt.Errorf("Update: %w", err)
	}
	return tx, nil
}

// Delete implements store.Store. Deleting an absent record is a no-op.
func (s *Store) Delete(ctx context.Context, tx domain.Transaction) error {
	q := s.client.Query(fmt.Sprintf(
		"DELETE FROM %s WHERE transaction_id = @transaction_id", s.tableRef()))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "transaction_id", Value: tx.ID},
	}

	if err := s.run(ctx, q); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}

// FindAll implements store.Store.
func (s *Store) FindAll(ctx context.Context) ([]domain.Transaction, error) {
	return s.FindByFilter(ctx, nil)
}

// FindByFilter implements store.Store. Each predicate becomes one ANDed
// condition in the WHERE clause; an empty set selects every record.
func (s *Store) FindByFilter(ctx context.Context, preds []store.Predicate) ([]domain.Transaction, error) {
	where, params := buildWhere(preds)

	sql := fmt.Sprintf(`
		SELECT transaction_id, amount, type, category, description, occurred_at
		FROM %s%s
		ORDER BY occurred_at, transaction_id
	`, s.tableRef(), where)

	q := s.client.Query(sql)
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindByFilter: running query: %w", err)
	}

	var result []domain.Transaction
	for {
		var row transactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("FindByFilter: reading row: %w", err)
		}
		result = append(result, fromRow(row))
	}

	return result, nil
}

// buildWhere translates the predicate set into SQL. Parameter names are
// positional (p0, p1, ...) to keep the clause and the parameter list aligned.
func buildWhere(preds []store.Predicate) (string, []bigquery.QueryParameter) {
	if len(preds) == 0 {
		return "", nil
	}

	var (
		conds  []string
		params []bigquery.QueryParameter
	)
	name := func(v any) string {
		n := fmt.Sprintf("p%d", len(params))
		params = append(params, bigquery.QueryParameter{Name: n, Value: v})
		return "@" + n
	}

	for _, p := range preds {
		switch p.Op {
		case store.OpGTE:
			conds = append(conds, fmt.Sprintf("amount >= %s", name(p.Number)))
		case store.OpLTE:
			conds = append(conds, fmt.Sprintf("amount <= %s", name(p.Number)))
		case store.OpEqualFold:
			conds = append(conds, fmt.Sprintf("UPPER(%s) = UPPER(%s)", column(p.Field), name(p.Text)))
		case store.OpContainsAll:
			for _, term := range strings.Fields(p.Text) {
				conds = append(conds, fmt.Sprintf(
					"CONTAINS_SUBSTR(%s, %s)", column(p.Field), name(term)))
			}
		case store.OpOnOrAfter:
			conds = append(conds, fmt.Sprintf("occurred_at >= %s", name(p.Time)))
		case store.OpBefore:
			conds = append(conds, fmt.Sprintf("occurred_at < %s", name(p.Time)))
		}
	}

	return "\nWHERE " + strings.Join(conds, "\n  AND "), params
}

func column(f store.Field) string {
	switch f {
	case store.FieldType:
		return "type"
	case store.FieldCategory:
		return "category"
	case store.FieldDescription:
		return "description"
	case store.FieldDate:
		return "occurred_at"
	}
	return "amount"
}

func (s *Store) tableRef() string {
	return fmt.Sprintf("`%s.%s.%s`", s.client.Project(), s.dataset, transactionsTable)
}

// run executes a DML statement and waits for completion.
func (s *Store) run(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running statement: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for statement: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("statement failed: %w", err)
	}
	return nil
}

func toRow(tx domain.Transaction) *transactionRow {
	return &transactionRow{
		TransactionID: tx.ID,
		Amount:        tx.Amount,
		Type:          string(tx.Type),
		Category:      string(tx.Category),
		Description:   tx.Description,
		OccurredAt:    tx.Date,
	}
}

func fromRow(row transactionRow) domain.Transaction {
	typ, err := domain.ParseType(row.Type)
	if err != nil {
		typ = domain.TypeNone
	}
	cat, err := domain.ParseCategory(row.Category)
	if err != nil {
		cat = domain.CategoryNone
	}
	return domain.Transaction{
		ID:          row.TransactionID,
		Amount:      row.Amount,
		Type:        typ,
		Category:    cat,
		Description: row.Description,
		Date:        row.OccurredAt,
	}
}

// Ensure Store implements the store contract.
var _ store.Store = (*Store)(nil)
