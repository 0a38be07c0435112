package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-assistant/internal/domain"
	"github.com/dvloznov/finance-assistant/internal/store/inmemory"
)

type stubOrchestrator struct {
	resp domain.AgentResponse
	err  error
}

func (s *stubOrchestrator) Orchestrate(ctx context.Context, message string) (domain.AgentResponse, error) {
	return s.resp, s.err
}

type stubRouter struct {
	resp domain.AgentResponse
	err  error
}

func (s *stubRouter) Route(ctx context.Context, message string, today time.Time) (domain.AgentResponse, error) {
	return s.resp, s.err
}

type stubClassifier struct {
	option domain.Option
	err    error
}

func (s *stubClassifier) Classify(ctx context.Context, options []domain.Option, message string) (domain.Option, error) {
	return s.option, s.err
}

func newTestHandler(agent Orchestrator, router MessageRouter, classifier Classifier) *AssistantHandler {
	return NewAssistantHandler(agent, router, classifier, inmemory.New(), zerolog.Nop())
}

func TestHandleAgent(t *testing.T) {
	tx := domain.Transaction{ID: "abc", Amount: 200000, Type: domain.TypeExpense, Category: domain.CategoryOther}
	h := newTestHandler(
		&stubOrchestrator{resp: domain.AgentResponse{Action: domain.ActionInsert, Transaction: &tx}},
		&stubRouter{}, &stubClassifier{},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/agent", strings.NewReader(`{"message": "Paid 200k for Grab ride"}`))
	rec := httptest.NewRecorder()
	h.HandleAgent(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
	}

	var resp domain.AgentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Action != domain.ActionInsert || resp.Transaction == nil || resp.Transaction.ID != "abc" {
		t.Errorf("response = %+v, want the INSERT envelope", resp)
	}
}

func TestHandleAgent_BadRequests(t *testing.T) {
	h := newTestHandler(&stubOrchestrator{}, &stubRouter{}, &stubClassifier{})

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"empty message", `{"message": ""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/agent", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.HandleAgent(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHandleAgent_IntentResolutionFailure(t *testing.T) {
	h := newTestHandler(
		&stubOrchestrator{err: &domain.IntentResolutionError{Reason: "no tool matched"}},
		&stubRouter{}, &stubClassifier{},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/agent", strings.NewReader(`{"message": "what's the weather?"}`))
	rec := httptest.NewRecorder()
	h.HandleAgent(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestHandleClassify_DefaultsToRouterOptions(t *testing.T) {
	h := newTestHandler(&stubOrchestrator{}, &stubRouter{}, &stubClassifier{
		option: domain.RouterOptions()[0],
	})

	req := httptest.NewRequest(http.MethodPost, "/api/classify", strings.NewReader(`{"message": "record 50k for coffee"}`))
	rec := httptest.NewRecorder()
	h.HandleClassify(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
	}

	var option domain.Option
	if err := json.Unmarshal(rec.Body.Bytes(), &option); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if option.ID != "insert" {
		t.Errorf("option = %+v, want insert", option)
	}
}

func TestListTransactions(t *testing.T) {
	st := inmemory.New()
	if _, err := st.Create(context.Background(), domain.Transaction{
		Amount: 10, Type: domain.TypeExpense, Category: domain.CategoryOther,
		Description: "Coffee", Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.Local),
	}); err != nil {
		t.Fatalf("seeding store failed: %v", err)
	}
	h := NewAssistantHandler(&stubOrchestrator{}, &stubRouter{}, &stubClassifier{}, st, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	rec := httptest.NewRecorder()
	h.ListTransactions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Transactions []domain.Transaction `json:"transactions"`
		Count        int                  `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Count != 1 || len(resp.Transactions) != 1 {
		t.Errorf("response = %+v, want one transaction", resp)
	}
}

func TestRegister_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(&stubOrchestrator{}, &stubRouter{}, &stubClassifier{})
	mux := http.NewServeMux()
	h.Register(mux)

	req := httptest.NewRequest(http.MethodGet, "/api/agent", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
