// Package router is the simpler entry point into the same intent space as
// the agent: classify the message into exactly one action, then dispatch
// procedurally. At most one action runs per call, so no tool-ordering
// invariant applies here.
package router

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-assistant/internal/assistant"
	"github.com/dvloznov/finance-assistant/internal/domain"
	"github.com/dvloznov/finance-assistant/internal/llm"
	"github.com/dvloznov/finance-assistant/internal/store"
)

// Router classifies a message into one of the routable actions (insert,
// search, clear-search) and performs it against the record store.
type Router struct {
	classifier *assistant.Classifier
	extractor  *assistant.Extractor
	store      store.Store
	log        zerolog.Logger
}

// New creates a router over the given generator and record store.
func New(gen llm.Generator, st store.Store, log zerolog.Logger) *Router {
	return &Router{
		classifier: assistant.NewClassifier(gen),
		extractor:  assistant.NewExtractor(gen),
		store:      st,
		log:        log,
	}
}

// Route resolves the message into exactly one action and executes it.
// today anchors relative dates during transaction extraction.
// Classification failures propagate unchanged; they are never defaulted to
// any one action.
func (r *Router) Route(ctx context.Context, message string, today time.Time) (domain.AgentResponse, error) {
	option, err := r.classifier.Classify(ctx, domain.RouterOptions(), message)
	if err != nil {
		return domain.AgentResponse{}, err
	}

	action, ok := domain.ActionForOption(option.ID)
	if !ok {
		return domain.AgentResponse{}, &domain.ClassificationError{
			Reason: fmt.Sprintf("option %q maps to no action", option.ID),
		}
	}

	r.log.Debug().Str("action", string(action)).Msg("Routing message")

	switch action {
	case domain.ActionInsert:
		return r.insert(ctx, message, today)
	case domain.ActionSearch:
		return r.search(ctx, message)
	default:
		return r.clearSearch(ctx)
	}
}

func (r *Router) insert(ctx context.Context, message string, today time.Time) (domain.AgentResponse, error) {
	tx, err := r.extractor.ExtractTransaction(ctx, message, today)
	if err != nil {
		return domain.AgentResponse{}, err
	}

	created, err := r.store.Create(ctx, tx)
	if err != nil {
		return domain.AgentResponse{}, fmt.Errorf("insert: %w", err)
	}

	return domain.AgentResponse{Action: domain.ActionInsert, Transaction: &created}, nil
}

func (r *Router) search(ctx context.Context, message string) (domain.AgentResponse, error) {
	criteria, err := r.extractor.ExtractSearchCriteria(ctx, message)
	if err != nil {
		return domain.AgentResponse{}, err
	}

	matched, err := r.store.FindByFilter(ctx, store.Compile(criteria))
	if err != nil {
		return domain.AgentResponse{}, fmt.Errorf("search: %w", err)
	}
	if matched == nil {
		matched = []domain.Transaction{}
	}

	return domain.AgentResponse{Action: domain.ActionSearch, Transactions: matched}, nil
}

func (r *Router) clearSearch(ctx context.Context) (domain.AgentResponse, error) {
	all, err := r.store.FindAll(ctx)
	if err != nil {
		return domain.AgentResponse{}, fmt.Errorf("clearSearch: %w", err)
	}
	if all == nil {
		all = []domain.Transaction{}
	}

	return domain.AgentResponse{Action: domain.ActionClearSearch, Transactions: all}, nil
}
