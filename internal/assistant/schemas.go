package assistant

import (
	"google.golang.org/genai"

	"github.com/dvloznov/finance-assistant/internal/domain"
)

// Response schemas passed to the model. Field descriptions bias generation
// the same way the prompt does; enum lists keep type and category closed.

// optionChoiceSchema constrains the classifier output to exactly one of the
// supplied option ids.
func optionChoiceSchema(ids []string) *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"id": {
				Type:        genai.TypeString,
				Description: "Id of the chosen option. Must be exactly one of the provided ids.",
				Enum:        ids,
			},
		},
		Required: []string{"id"},
	}
}

func typeEnum() []string {
	types := domain.Types()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func categoryEnum() []string {
	cats := domain.Categories()
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	return out
}

// transactionSchema declares the extraction target for a new transaction.
// There is deliberately no id property: ids are assigned by the store and the
// model must never invent one.
func transactionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"amount": {
				Type:        genai.TypeNumber,
				Description: "Amount of the transaction. This is a money field; plain number, no currency symbols.",
			},
			"type": {
				Type:        genai.TypeString,
				Description: "Type of the transaction.",
				Enum:        typeEnum(),
			},
			"category": {
				Type:        genai.TypeString,
				Description: "Category of the transaction.",
				Enum:        categoryEnum(),
			},
			"description": {
				Type:        genai.TypeString,
				Description: "Description or note about the transaction. Empty string if not stated.",
				Nullable:    genai.Ptr(true),
			},
			"date": {
				Type:        genai.TypeString,
				Format:      "date",
				Description: "The date the transaction occurred, format YYYY-MM-DD.",
			},
		},
		Required: []string{"amount", "type", "category", "date"},
	}
}

// criteriaSchema declares the extraction target for search criteria. Every
// field is nullable; null means "not used as a filter".
func criteriaSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"minAmount": {
				Type:        genai.TypeNumber,
				Description: "Minimum amount for the transaction search (inclusive). Null if no minimum amount filter is needed.",
				Nullable:    genai.Ptr(true),
			},
			"maxAmount": {
				Type:        genai.TypeNumber,
				Description: "Maximum amount for the transaction search (inclusive). Null if no maximum amount filter is needed.",
				Nullable:    genai.Ptr(true),
			},
			"type": {
				Type:        genai.TypeString,
				Description: "Type of transaction to search for. Null to search all types.",
				Enum:        typeEnum(),
				Nullable:    genai.Ptr(true),
			},
			"category": {
				Type:        genai.TypeString,
				Description: "Category of transaction to search for. Null to search all categories.",
				Enum:        categoryEnum(),
				Nullable:    genai.Ptr(true),
			},
			"descriptionContains": {
				Type:        genai.TypeString,
				Description: "Text to search for in transaction descriptions. Null if no description filter is needed.",
				Nullable:    genai.Ptr(true),
			},
			"fromDate": {
				Type:        genai.TypeString,
				Format:      "date",
				Description: "Start date for the search range (inclusive), format YYYY-MM-DD. Null if no start date filter is needed.",
				Nullable:    genai.Ptr(true),
			},
			"toDate": {
				Type:        genai.TypeString,
				Format:      "date",
				Description: "End date for the search range (inclusive), format YYYY-MM-DD. Null if no end date filter is needed.",
				Nullable:    genai.Ptr(true),
			},
		},
	}
}
