package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-assistant/internal/api/middleware"
	"github.com/dvloznov/finance-assistant/internal/domain"
	"github.com/dvloznov/finance-assistant/internal/store"
)

// Orchestrator is the agent entry point the handler calls.
type Orchestrator interface {
	Orchestrate(ctx context.Context, message string) (domain.AgentResponse, error)
}

// MessageRouter is the classify-then-dispatch entry point.
type MessageRouter interface {
	Route(ctx context.Context, message string, today time.Time) (domain.AgentResponse, error)
}

// Classifier picks one option for a message.
type Classifier interface {
	Classify(ctx context.Context, options []domain.Option, message string) (domain.Option, error)
}

// AssistantHandler exposes the assistant over HTTP.
type AssistantHandler struct {
	agent      Orchestrator
	router     MessageRouter
	classifier Classifier
	store      store.Store
	log        zerolog.Logger
}

// NewAssistantHandler creates the handler set.
func NewAssistantHandler(agent Orchestrator, router MessageRouter, classifier Classifier, st store.Store, log zerolog.Logger) *AssistantHandler {
	return &AssistantHandler{
		agent:      agent,
		router:     router,
		classifier: classifier,
		store:      st,
		log:        log,
	}
}

// Register wires the handler's routes onto the mux.
func (h *AssistantHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/agent", requireMethod(http.MethodPost, h.HandleAgent))
	mux.HandleFunc("/api/route", requireMethod(http.MethodPost, h.HandleRoute))
	mux.HandleFunc("/api/classify", requireMethod(http.MethodPost, h.HandleClassify))
	mux.HandleFunc("/api/transactions", requireMethod(http.MethodGet, h.ListTransactions))
}

func requireMethod(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		next(w, r)
	}
}

type messageRequest struct {
	Message string `json:"message"`
}

func decodeMessage(w http.ResponseWriter, r *http.Request) (messageRequest, bool) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	if req.Message == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Message is required")
		return req, false
	}
	return req, true
}

// HandleAgent handles POST /api/agent: one orchestrated run per request.
func (h *AssistantHandler) HandleAgent(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeMessage(w, r)
	if !ok {
		return
	}

	resp, err := h.agent.Orchestrate(r.Context(), req.Message)
	if err != nil {
		h.writeFailure(w, err, "Agent run failed")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, resp)
}

// HandleRoute handles POST /api/route: classify into one action and run it.
func (h *AssistantHandler) HandleRoute(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeMessage(w, r)
	if !ok {
		return
	}

	resp, err := h.router.Route(r.Context(), req.Message, time.Now())
	if err != nil {
		h.writeFailure(w, err, "Routing failed")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, resp)
}

// HandleClassify handles POST /api/classify. Callers may supply their own
// option list; without one the routable actions are used.
func (h *AssistantHandler) HandleClassify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string          `json:"message"`
		Options []domain.Option `json:"options"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Message == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Message is required")
		return
	}
	if len(req.Options) == 0 {
		req.Options = domain.RouterOptions()
	}

	option, err := h.classifier.Classify(r.Context(), req.Options, req.Message)
	if err != nil {
		h.writeFailure(w, err, "Classification failed")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, option)
}

// ListTransactions handles GET /api/transactions.
func (h *AssistantHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.store.FindAll(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// writeFailure maps the error taxonomy onto HTTP statuses: resolution and
// schema failures are the caller's problem to retry, everything else is ours.
func (h *AssistantHandler) writeFailure(w http.ResponseWriter, err error, logMsg string) {
	h.log.Error().Err(err).Msg(logMsg)

	var (
		classificationErr *domain.ClassificationError
		extractionErr     *domain.ExtractionError
		intentErr         *domain.IntentResolutionError
	)
	switch {
	case errors.As(err, &classificationErr), errors.As(err, &extractionErr), errors.As(err, &intentErr):
		middleware.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		middleware.WriteError(w, http.StatusInternalServerError, logMsg)
	}
}
