// Package agent runs the tool-orchestrating loop: the model picks tools from
// a closed set, the agent executes them against the record store, and the run
// terminates in exactly one AgentResponse.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/dvloznov/finance-assistant/internal/assistant"
	"github.com/dvloznov/finance-assistant/internal/domain"
	"github.com/dvloznov/finance-assistant/internal/llm"
	"github.com/dvloznov/finance-assistant/internal/store"
)

// maxToolRounds bounds the decision loop. A run that has not produced a
// final answer by then fails with IntentResolutionError.
const maxToolRounds = 8

// Agent orchestrates tool calls for one message at a time. It keeps no state
// between runs and is safe for concurrent use.
type Agent struct {
	gen       llm.Generator
	extractor *assistant.Extractor
	store     store.Store
	log       zerolog.Logger
	now       func() time.Time
}

// New creates an agent over the given generator and record store.
func New(gen llm.Generator, st store.Store, log zerolog.Logger) *Agent {
	return &Agent{
		gen:       gen,
		extractor: assistant.NewExtractor(gen),
		store:     st,
		log:       log,
		now:       time.Now,
	}
}

// runState is the per-run bookkeeping the ordering invariant needs.
type runState struct {
	// retrieved is set once a retrieval tool has produced at least one
	// concrete record. Update and delete are refused until then.
	retrieved bool
	// lastEnvelope is the envelope of the most recent side-effecting tool,
	// used as the terminal response when the model gives no usable final
	// answer of its own.
	lastEnvelope *domain.AgentResponse
}

func agentSystemPrompt(today time.Time) string {
	return "You are an assistant that manages financial transactions using the provided tools.\n" +
		fmt.Sprintf("Today: %s\n\n", today.Format(domain.DateFormat)) +
		"Business rules:\n" +
		"- Before deleting or updating a transaction, you must first retrieve it with search_one_transaction.\n" +
		"- Pass retrieved transactions to update_transaction and delete_transaction unchanged except for the fields the user asked to modify. NEVER change the id.\n\n" +
		"When you are done, reply with a single JSON object and nothing else:\n" +
		"{\"action\": \"INSERT\"|\"SEARCH\"|\"CLEAR_SEARCH\"|\"UPDATE\"|\"DELETE\", \"transaction\": object or null, \"transactions\": array or null, \"errorMessage\": string}\n"
}

// Orchestrate resolves the message into one business action, invoking tools
// as needed, and returns the terminal envelope. Tool-level failures are
// captured into the envelope's errorMessage; only a run that cannot be
// mapped to any action fails, with *domain.IntentResolutionError.
func (a *Agent) Orchestrate(ctx context.Context, message string) (domain.AgentResponse, error) {
	system := agentSystemPrompt(a.now())
	history := []*genai.Content{
		{Role: genai.RoleUser, Parts: []*genai.Part{{Text: message}}},
	}
	decls := toolDeclarations()

	var state runState

	for round := 0; round < maxToolRounds; round++ {
		resp, err := a.gen.GenerateWithTools(ctx, system, history, decls)
		if err != nil {
			return domain.AgentResponse{}, fmt.Errorf("Orchestrate: model call: %w", err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			break
		}

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			return a.finishFromText(resp.Text(), &state)
		}

		history = append(history, resp.Candidates[0].Content)

		var parts []*genai.Part
		for _, call := range calls {
			a.log.Debug().Str("tool", call.Name).Msg("Dispatching tool call")
			result := a.dispatch(ctx, call, &state)
			parts = append(parts, &genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					ID:       call.ID,
					Name:     call.Name,
					Response: result,
				},
			})
		}
		history = append(history, &genai.Content{Role: genai.RoleUser, Parts: parts})
	}

	// Round budget exhausted. The executed tools are still authoritative.
	if state.lastEnvelope != nil {
		return finalize(*state.lastEnvelope), nil
	}
	return domain.AgentResponse{}, &domain.IntentResolutionError{
		Reason: "no tool matched the message and no final answer was produced",
	}
}

// dispatch maps one model-chosen tool call onto its typed handler and returns
// the result fed back to the model. Unknown tool names and bad arguments are
// reported back as tool errors, not crashes.
func (a *Agent) dispatch(ctx context.Context, call *genai.FunctionCall, state *runState) map[string]any {
	raw, err := json.Marshal(call.Args)
	if err != nil {
		return toolError(fmt.Errorf("encoding arguments: %w", err))
	}

	switch call.Name {
	case toolCreateTransaction:
		var args struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &args); err != nil {
			return toolError(err)
		}
		envelope := a.createTransaction(ctx, args.Message)
		state.lastEnvelope = &envelope
		return envelopeMap(envelope)

	case toolSearchTransactions:
		var args struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &args); err != nil {
			return toolError(err)
		}
		envelope := a.searchTransactions(ctx, args.Message)
		if len(envelope.Transactions) > 0 {
			state.retrieved = true
		}
		state.lastEnvelope = &envelope
		return envelopeMap(envelope)

	case toolSearchOneTransaction:
		var args struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &args); err != nil {
			return toolError(err)
		}
		tx, err := a.searchOneTransaction(ctx, args.Message)
		if err != nil {
			return toolError(err)
		}
		state.retrieved = true
		return valueMap(tx)

	case toolUpdateTransaction, toolDeleteTransaction:
		if !state.retrieved {
			// Ordering invariant: never mutate a record the run has not
			// retrieved; a fabricated identity must not reach the store.
			return toolError(fmt.Errorf("the transaction must be retrieved with %s before it can be modified", toolSearchOneTransaction))
		}
		var args struct {
			Transaction *transactionArg `json:"transaction"`
		}
		if err := json.Unmarshal(raw, &args); err != nil {
			return toolError(err)
		}
		tx, err := args.Transaction.toDomain()
		if err != nil {
			return toolError(err)
		}
		var envelope domain.AgentResponse
		if call.Name == toolUpdateTransaction {
			envelope = a.updateTransaction(ctx, tx)
		} else {
			envelope = a.deleteTransaction(ctx, tx)
		}
		state.lastEnvelope = &envelope
		return envelopeMap(envelope)
	}

	return toolError(fmt.Errorf("unknown tool %q", call.Name))
}

// finishFromText turns the model's final text into the terminal envelope,
// falling back to the last executed tool's envelope when the text is not a
// usable answer.
func (a *Agent) finishFromText(text string, state *runState) (domain.AgentResponse, error) {
	var final domain.AgentResponse
	if err := json.Unmarshal([]byte(llm.CleanJSON(text)), &final); err == nil && final.Action != "" {
		return finalize(final), nil
	}

	if state.lastEnvelope != nil {
		return finalize(*state.lastEnvelope), nil
	}

	return domain.AgentResponse{}, &domain.IntentResolutionError{
		Reason: "model produced neither a tool call nor a parseable final answer",
	}
}

// finalize enforces the terminal-response guarantee: a result is populated or
// errorMessage is non-empty, never neither.
func finalize(resp domain.AgentResponse) domain.AgentResponse {
	switch resp.Action {
	case domain.ActionSearch, domain.ActionClearSearch:
		if resp.Transactions == nil {
			resp.Transactions = []domain.Transaction{}
		}
	default:
		if resp.Transaction == nil && resp.ErrorMessage == "" {
			resp.ErrorMessage = "no result was produced for the request"
		}
	}
	return resp
}

func toolError(err error) map[string]any {
	return map[string]any{"error": err.Error()}
}

func envelopeMap(resp domain.AgentResponse) map[string]any {
	return valueMap(resp)
}

// valueMap round-trips a value through JSON into the map shape function
// responses require.
func valueMap(v any) map[string]any {
	b, err := json.Marshal(v)
	if err != nil {
		return toolError(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return toolError(err)
	}
	return m
}
