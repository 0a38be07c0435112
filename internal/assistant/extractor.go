package assistant

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/finance-assistant/internal/domain"
	"github.com/dvloznov/finance-assistant/internal/llm"
)

// Extractor converts free-text messages into typed records: transactions for
// creation, search criteria for filtering. Both operations are pure
// transformations; nothing is persisted here.
type Extractor struct {
	gen llm.Generator
}

// NewExtractor creates an extractor on top of the given generator.
func NewExtractor(gen llm.Generator) *Extractor {
	return &Extractor{gen: gen}
}

// transactionWire is the raw shape the model returns for a transaction.
type transactionWire struct {
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Description *string `json:"description"`
	Date        string  `json:"date"`
}

// ExtractTransaction parses a message like "Paid 200k for Grab ride
// yesterday" into a Transaction. today anchors relative date phrases. The
// result never carries an ID; the store assigns one on create.
//
// Fails with *domain.ExtractionError when the model output violates the
// schema; such a transaction must not be persisted.
func (e *Extractor) ExtractTransaction(ctx context.Context, message string, today time.Time) (domain.Transaction, error) {
	raw, err := e.gen.Generate(ctx, transactionSchema(), transactionSystemPrompt(today), message)
	if err != nil {
		return domain.Transaction{}, &domain.ExtractionError{Reason: "model call failed", Err: err}
	}

	var wire transactionWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return domain.Transaction{}, &domain.ExtractionError{Reason: "malformed model output", Err: err}
	}

	typ, err := domain.ParseType(wire.Type)
	if err != nil {
		return domain.Transaction{}, &domain.ExtractionError{Field: "type", Err: err}
	}
	cat, err := domain.ParseCategory(wire.Category)
	if err != nil {
		return domain.Transaction{}, &domain.ExtractionError{Field: "category", Err: err}
	}
	date, err := time.ParseInLocation(domain.DateFormat, wire.Date, time.Local)
	if err != nil {
		return domain.Transaction{}, &domain.ExtractionError{Field: "date", Reason: "unparseable date", Err: err}
	}

	// Unstated description defaults to empty string, not null.
	desc := ""
	if wire.Description != nil {
		desc = *wire.Description
	}

	return domain.Transaction{
		Amount:      wire.Amount,
		Type:        typ,
		Category:    cat,
		Description: desc,
		Date:        date,
	}, nil
}

// criteriaWire is the raw shape the model returns for search criteria.
// Everything is a pointer so null-if-unstated survives decoding.
type criteriaWire struct {
	MinAmount           *float64 `json:"minAmount"`
	MaxAmount           *float64 `json:"maxAmount"`
	Type                *string  `json:"type"`
	Category            *string  `json:"category"`
	DescriptionContains *string  `json:"descriptionContains"`
	FromDate            *string  `json:"fromDate"`
	ToDate              *string  `json:"toDate"`
}

// ExtractSearchCriteria parses a search query like "Find all food expenses
// over 100000 last month" into criteria. A field is set only if explicitly
// stated or directly inferable; everything else stays unset, so a message
// like "show me everything" yields criteria with no filter at all.
func (e *Extractor) ExtractSearchCriteria(ctx context.Context, message string) (domain.SearchCriteria, error) {
	raw, err := e.gen.Generate(ctx, criteriaSchema(), criteriaSystemPrompt, message)
	if err != nil {
		return domain.SearchCriteria{}, &domain.ExtractionError{Reason: "model call failed", Err: err}
	}

	var wire criteriaWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return domain.SearchCriteria{}, &domain.ExtractionError{Reason: "malformed model output", Err: err}
	}

	criteria := domain.SearchCriteria{
		MinAmount: wire.MinAmount,
		MaxAmount: wire.MaxAmount,
	}

	if wire.Type != nil {
		typ, err := domain.ParseType(*wire.Type)
		if err != nil {
			return domain.SearchCriteria{}, &domain.ExtractionError{Field: "type", Err: err}
		}
		criteria.Type = typ
	}
	if wire.Category != nil {
		cat, err := domain.ParseCategory(*wire.Category)
		if err != nil {
			return domain.SearchCriteria{}, &domain.ExtractionError{Field: "category", Err: err}
		}
		criteria.Category = cat
	}
	if wire.DescriptionContains != nil {
		criteria.DescriptionContains = *wire.DescriptionContains
	}

	if wire.FromDate != nil {
		d, err := civil.ParseDate(*wire.FromDate)
		if err != nil {
			return domain.SearchCriteria{}, &domain.ExtractionError{Field: "fromDate", Reason: "unparseable date", Err: err}
		}
		criteria.FromDate = &d
	}
	if wire.ToDate != nil {
		d, err := civil.ParseDate(*wire.ToDate)
		if err != nil {
			return domain.SearchCriteria{}, &domain.ExtractionError{Field: "toDate", Reason: "unparseable date", Err: err}
		}
		criteria.ToDate = &d
	}

	return criteria, nil
}
