package router

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/dvloznov/finance-assistant/internal/domain"
	"github.com/dvloznov/finance-assistant/internal/logger"
	"github.com/dvloznov/finance-assistant/internal/store/inmemory"
)

// queueGenerator pops one canned JSON response per Generate call.
type queueGenerator struct {
	responses [][]byte
	calls     int
}

func (q *queueGenerator) Generate(ctx context.Context, schema *genai.Schema, system, message string) ([]byte, error) {
	if q.calls >= len(q.responses) {
		return nil, errors.New("queueGenerator: no scripted response left")
	}
	resp := q.responses[q.calls]
	q.calls++
	return resp, nil
}

func (q *queueGenerator) GenerateWithTools(ctx context.Context, system string, history []*genai.Content, decls []*genai.FunctionDeclaration) (*genai.GenerateContentResponse, error) {
	return nil, errors.New("queueGenerator: GenerateWithTools not scripted")
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func newTestRouter(gen *queueGenerator, st *inmemory.Store) *Router {
	return New(gen, st, logger.NewWithWriter(nopWriter{}))
}

func TestRoute_Insert(t *testing.T) {
	st := inmemory.New()
	gen := &queueGenerator{responses: [][]byte{
		[]byte(`{"id": "insert"}`),
		[]byte(`{"amount": 200000, "type": "EXPENSE", "category": "OTHER", "description": "Grab ride", "date": "2024-04-30"}`),
	}}

	resp, err := newTestRouter(gen, st).Route(context.Background(), "Paid 200k for Grab ride yesterday", time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local))
	if err != nil {
		t.Fatalf("Route failed: %v", err)
	}

	if resp.Action != domain.ActionInsert {
		t.Errorf("Action = %v, want INSERT", resp.Action)
	}
	if resp.Transaction == nil || resp.Transaction.ID == "" {
		t.Fatal("response carries no persisted transaction")
	}

	all, _ := st.FindAll(context.Background())
	if len(all) != 1 {
		t.Errorf("store holds %d transactions, want 1", len(all))
	}
}

func TestRoute_Search(t *testing.T) {
	st := inmemory.New()
	seed := domain.Transaction{
		Amount:      150000,
		Type:        domain.TypeExpense,
		Category:    domain.CategoryFood,
		Description: "Lunch",
		Date:        time.Date(2024, 4, 15, 0, 0, 0, 0, time.Local),
	}
	if _, err := st.Create(context.Background(), seed); err != nil {
		t.Fatalf("seeding store failed: %v", err)
	}

	gen := &queueGenerator{responses: [][]byte{
		[]byte(`{"id": "search"}`),
		[]byte(`{"category": "FOOD"}`),
	}}

	resp, err := newTestRouter(gen, st).Route(context.Background(), "find my food expenses", time.Now())
	if err != nil {
		t.Fatalf("Route failed: %v", err)
	}

	if resp.Action != domain.ActionSearch {
		t.Errorf("Action = %v, want SEARCH", resp.Action)
	}
	if len(resp.Transactions) != 1 || resp.Transactions[0].Description != "Lunch" {
		t.Errorf("Transactions = %v, want the seeded lunch", resp.Transactions)
	}
}

func TestRoute_ClearSearchReturnsAll(t *testing.T) {
	st := inmemory.New()
	for _, desc := range []string{"Lunch", "Taxi"} {
		if _, err := st.Create(context.Background(), domain.Transaction{
			Amount: 10, Type: domain.TypeExpense, Category: domain.CategoryOther,
			Description: desc, Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.Local),
		}); err != nil {
			t.Fatalf("seeding store failed: %v", err)
		}
	}

	gen := &queueGenerator{responses: [][]byte{[]byte(`{"id": "clear"}`)}}

	resp, err := newTestRouter(gen, st).Route(context.Background(), "clear the search", time.Now())
	if err != nil {
		t.Fatalf("Route failed: %v", err)
	}

	if resp.Action != domain.ActionClearSearch {
		t.Errorf("Action = %v, want CLEAR_SEARCH", resp.Action)
	}
	if len(resp.Transactions) != 2 {
		t.Errorf("Transactions = %d, want 2", len(resp.Transactions))
	}
}

func TestRoute_ClassificationFailurePropagates(t *testing.T) {
	gen := &queueGenerator{responses: [][]byte{[]byte(`{"id": "reticulate"}`)}}

	_, err := newTestRouter(gen, inmemory.New()).Route(context.Background(), "reticulate my splines", time.Now())

	var cerr *domain.ClassificationError
	if !errors.As(err, &cerr) {
		t.Fatalf("Route error = %v, want ClassificationError", err)
	}
}

func TestRoute_ExtractionFailureDoesNotPersist(t *testing.T) {
	st := inmemory.New()
	gen := &queueGenerator{responses: [][]byte{
		[]byte(`{"id": "insert"}`),
		[]byte(`{"amount": 10, "type": "spending", "category": "FOOD", "date": "2024-01-15"}`),
	}}

	_, err := newTestRouter(gen, st).Route(context.Background(), "spent some money", time.Now())

	var eerr *domain.ExtractionError
	if !errors.As(err, &eerr) {
		t.Fatalf("Route error = %v, want ExtractionError", err)
	}

	all, _ := st.FindAll(context.Background())
	if len(all) != 0 {
		t.Error("a transaction from a failed extraction was persisted")
	}
}
