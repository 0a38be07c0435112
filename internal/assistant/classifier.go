// Package assistant holds the model-facing decision logic: option
// classification and structured extraction of transactions and search
// criteria from free text.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dvloznov/finance-assistant/internal/domain"
	"github.com/dvloznov/finance-assistant/internal/llm"
)

// Classifier picks exactly one option from a supplied list given a message.
type Classifier struct {
	gen llm.Generator
}

// NewClassifier creates a classifier on top of the given generator.
func NewClassifier(gen llm.Generator) *Classifier {
	return &Classifier{gen: gen}
}

// Classify returns the single option whose condition best matches the
// message. The returned value is always one of the input elements, looked up
// by id from the model's choice; the model's own copy is never trusted. Ties
// resolve to the option appearing earliest in the list.
//
// Fails with *domain.ClassificationError when options are empty, ids are not
// unique, or the model output does not resolve to a supplied option.
func (c *Classifier) Classify(ctx context.Context, options []domain.Option, message string) (domain.Option, error) {
	if len(options) == 0 {
		return domain.Option{}, &domain.ClassificationError{Reason: "options must not be empty"}
	}

	ids := make([]string, len(options))
	seen := make(map[string]bool, len(options))
	for i, opt := range options {
		if seen[opt.ID] {
			return domain.Option{}, &domain.ClassificationError{
				Reason: fmt.Sprintf("duplicate option id %q", opt.ID),
			}
		}
		seen[opt.ID] = true
		ids[i] = opt.ID
	}

	optionsJSON, err := json.Marshal(options)
	if err != nil {
		return domain.Option{}, &domain.ClassificationError{Reason: "encoding options", Err: err}
	}

	raw, err := c.gen.Generate(ctx, optionChoiceSchema(ids), classifierSystemPrompt(string(optionsJSON)), message)
	if err != nil {
		return domain.Option{}, &domain.ClassificationError{Reason: "model call failed", Err: err}
	}

	var choice struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &choice); err != nil {
		return domain.Option{}, &domain.ClassificationError{Reason: "malformed model output", Err: err}
	}

	for _, opt := range options {
		if opt.ID == choice.ID {
			return opt, nil
		}
	}

	return domain.Option{}, &domain.ClassificationError{
		Reason: fmt.Sprintf("model chose unknown option id %q", choice.ID),
	}
}
