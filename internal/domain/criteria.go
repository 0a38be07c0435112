package domain

import (
	"strings"

	"cloud.google.com/go/civil"
)

// SearchCriteria describes a filter over transactions. Every field is
// optional: a nil pointer (or NONE / blank string) means the field is not
// used as a filter. A criteria value with nothing set selects all records.
type SearchCriteria struct {
	// MinAmount and MaxAmount bound the transaction amount, inclusive on
	// both ends.
	MinAmount *float64 `json:"minAmount"`
	MaxAmount *float64 `json:"maxAmount"`

	// Type and Category match exactly (case-insensitive). NONE means the
	// field is unset, not "match records typed NONE".
	Type     Type     `json:"type"`
	Category Category `json:"category"`

	// DescriptionContains matches descriptions containing all of its
	// whitespace-separated terms. Blank means unset.
	DescriptionContains string `json:"descriptionContains"`

	// FromDate and ToDate bound the calendar day the transaction occurred,
	// inclusive on both ends.
	FromDate *civil.Date `json:"fromDate"`
	ToDate   *civil.Date `json:"toDate"`
}

// HasAnyFilter reports whether at least one criterion is set.
// A non-blank description filter counts; NONE type/category do not.
func (c SearchCriteria) HasAnyFilter() bool {
	return c.MinAmount != nil ||
		c.MaxAmount != nil ||
		(c.Type != "" && c.Type != TypeNone) ||
		(c.Category != "" && c.Category != CategoryNone) ||
		strings.TrimSpace(c.DescriptionContains) != "" ||
		c.FromDate != nil ||
		c.ToDate != nil
}
