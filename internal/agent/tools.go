package agent

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/dvloznov/finance-assistant/internal/domain"
	"github.com/dvloznov/finance-assistant/internal/store"
)

// The closed tool set the model can invoke. Dispatch is by name over this
// fixed table; there is no reflective method lookup.
const (
	toolCreateTransaction    = "create_transaction"
	toolSearchTransactions   = "search_transactions"
	toolSearchOneTransaction = "search_one_transaction"
	toolUpdateTransaction    = "update_transaction"
	toolDeleteTransaction    = "delete_transaction"
)

func messageParams(desc string) *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"message": {Type: genai.TypeString, Description: desc},
		},
		Required: []string{"message"},
	}
}

func transactionParams() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"transaction": {
				Type:        genai.TypeObject,
				Description: "The transaction to operate on, exactly as previously retrieved.",
				Properties: map[string]*genai.Schema{
					"id": {
						Type:        genai.TypeString,
						Description: "ID of the transaction. NEVER change this field.",
					},
					"amount":      {Type: genai.TypeNumber, Description: "Amount of the transaction."},
					"type":        {Type: genai.TypeString, Description: "Type of the transaction."},
					"category":    {Type: genai.TypeString, Description: "Category of the transaction."},
					"description": {Type: genai.TypeString, Description: "Description of the transaction."},
					"date":        {Type: genai.TypeString, Description: "Date the transaction occurred."},
				},
				Required: []string{"id"},
			},
		},
	}
}

// toolDeclarations builds the function declarations advertised to the model.
func toolDeclarations() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        toolCreateTransaction,
			Description: "Use when the user intends to create or record a new transaction.",
			Parameters:  messageParams("The user's description of the transaction, e.g. \"Paid 200k for Grab ride yesterday\"."),
		},
		{
			Name:        toolSearchTransactions,
			Description: "Use when the user needs a list of transactions matching criteria.",
			Parameters:  messageParams("The user's search query, e.g. \"Find all food expenses over 100k last month\"."),
		},
		{
			Name:        toolSearchOneTransaction,
			Description: "Use when you need to retrieve information about a single transaction, including before updating or deleting it.",
			Parameters:  messageParams("A search query identifying the transaction."),
		},
		{
			Name:        toolUpdateTransaction,
			Description: "Use when the user wants to update or modify an existing transaction. The transaction must have been retrieved first.",
			Parameters:  transactionParams(),
		},
		{
			Name:        toolDeleteTransaction,
			Description: "Use when the user wants to delete a transaction. The transaction must have been retrieved first.",
			Parameters:  transactionParams(),
		},
	}
}

// createTransaction extracts a transaction from the message and persists it.
// A failed extraction is reported in the envelope and never persisted.
func (a *Agent) createTransaction(ctx context.Context, message string) domain.AgentResponse {
	tx, err := a.extractor.ExtractTransaction(ctx, message, a.now())
	if err != nil {
		return domain.AgentResponse{Action: domain.ActionInsert, ErrorMessage: err.Error()}
	}

	created, err := a.store.Create(ctx, tx)
	if err != nil {
		return domain.AgentResponse{Action: domain.ActionInsert, ErrorMessage: err.Error()}
	}

	return domain.AgentResponse{Action: domain.ActionInsert, Transaction: &created}
}

// searchTransactions extracts criteria from the message, compiles them and
// runs the query. An empty result set is a valid answer, not an error.
func (a *Agent) searchTransactions(ctx context.Context, message string) domain.AgentResponse {
	criteria, err := a.extractor.ExtractSearchCriteria(ctx, message)
	if err != nil {
		return domain.AgentResponse{Action: domain.ActionSearch, ErrorMessage: err.Error()}
	}

	matched, err := a.store.FindByFilter(ctx, store.Compile(criteria))
	if err != nil {
		return domain.AgentResponse{Action: domain.ActionSearch, ErrorMessage: err.Error()}
	}
	if matched == nil {
		matched = []domain.Transaction{}
	}

	return domain.AgentResponse{Action: domain.ActionSearch, Transactions: matched}
}

// searchOneTransaction returns the first match for the query, or
// store.ErrNotFound when nothing matches. Not found is recoverable: the
// agent reports it to the model instead of aborting the run.
func (a *Agent) searchOneTransaction(ctx context.Context, message string) (domain.Transaction, error) {
	criteria, err := a.extractor.ExtractSearchCriteria(ctx, message)
	if err != nil {
		return domain.Transaction{}, err
	}

	matched, err := a.store.FindByFilter(ctx, store.Compile(criteria))
	if err != nil {
		return domain.Transaction{}, err
	}
	if len(matched) == 0 {
		return domain.Transaction{}, fmt.Errorf("searchOneTransaction: %w", store.ErrNotFound)
	}

	return matched[0], nil
}

// updateTransaction persists changes to an existing record. A missing
// transaction short-circuits before the store is touched; the same policy
// applies to delete.
func (a *Agent) updateTransaction(ctx context.Context, tx *domain.Transaction) domain.AgentResponse {
	if tx == nil || tx.ID == "" {
		verr := &domain.ValidationError{Reason: "transaction cannot be empty"}
		return domain.AgentResponse{Action: domain.ActionUpdate, ErrorMessage: verr.Error()}
	}

	updated, err := a.store.Update(ctx, *tx)
	if err != nil {
		return domain.AgentResponse{Action: domain.ActionUpdate, Transaction: tx, ErrorMessage: err.Error()}
	}

	return domain.AgentResponse{Action: domain.ActionUpdate, Transaction: &updated}
}

// deleteTransaction removes a record.
func (a *Agent) deleteTransaction(ctx context.Context, tx *domain.Transaction) domain.AgentResponse {
	if tx == nil || tx.ID == "" {
		verr := &domain.ValidationError{Reason: "transaction cannot be empty"}
		return domain.AgentResponse{Action: domain.ActionDelete, ErrorMessage: verr.Error()}
	}

	if err := a.store.Delete(ctx, *tx); err != nil {
		return domain.AgentResponse{Action: domain.ActionDelete, Transaction: tx, ErrorMessage: err.Error()}
	}

	return domain.AgentResponse{Action: domain.ActionDelete, Transaction: tx}
}

// transactionArg mirrors domain.Transaction with a string date so tool
// arguments decode whether the model echoes RFC 3339 timestamps or plain
// YYYY-MM-DD dates.
type transactionArg struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

func (t *transactionArg) toDomain() (*domain.Transaction, error) {
	if t == nil {
		return nil, nil
	}

	typ, err := domain.ParseType(t.Type)
	if err != nil {
		return nil, err
	}
	cat, err := domain.ParseCategory(t.Category)
	if err != nil {
		return nil, err
	}

	var date time.Time
	if t.Date != "" {
		date, err = time.Parse(time.RFC3339, t.Date)
		if err != nil {
			date, err = time.ParseInLocation(domain.DateFormat, t.Date, time.Local)
			if err != nil {
				return nil, fmt.Errorf("unparseable date %q", t.Date)
			}
		}
	}

	return &domain.Transaction{
		ID:          t.ID,
		Amount:      t.Amount,
		Type:        typ,
		Category:    cat,
		Description: t.Description,
		Date:        date,
	}, nil
}
