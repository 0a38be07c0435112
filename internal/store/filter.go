package store

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/finance-assistant/internal/domain"
)

// Field names a transaction field a predicate constrains.
type Field string

const (
	FieldAmount      Field = "amount"
	FieldType        Field = "type"
	FieldCategory    Field = "category"
	FieldDescription Field = "description"
	FieldDate        Field = "date"
)

// Op is the comparison a predicate applies.
type Op string

const (
	// OpGTE and OpLTE compare Number against the amount, inclusive.
	OpGTE Op = "gte"
	OpLTE Op = "lte"
	// OpEqualFold compares Text case-insensitively.
	OpEqualFold Op = "eq_fold"
	// OpContainsAll requires every whitespace-separated term of Text to
	// appear in the field, case-insensitively.
	OpContainsAll Op = "contains_all"
	// OpOnOrAfter and OpBefore compare Time against the transaction date.
	OpOnOrAfter Op = "on_or_after"
	OpBefore    Op = "before"
)

// Predicate is one field-level constraint. Exactly one of Number, Text or
// Time is meaningful, selected by Op. Predicates in a set combine with
// logical AND.
type Predicate struct {
	Field  Field
	Op     Op
	Number float64
	Text   string
	Time   time.Time
}

// Compile turns search criteria into the conjunctive predicate set the store
// executes. Unset fields compile to nothing; criteria with no field set
// compile to an empty set, which selects every record.
//
// Date bounds are made inclusive at day granularity: FromDate becomes
// "on or after the start of that day" and ToDate becomes "before the first
// instant of the following day".
func Compile(criteria domain.SearchCriteria) []Predicate {
	if !criteria.HasAnyFilter() {
		return nil
	}

	var preds []Predicate

	if criteria.MinAmount != nil {
		preds = append(preds, Predicate{Field: FieldAmount, Op: OpGTE, Number: *criteria.MinAmount})
	}
	if criteria.MaxAmount != nil {
		preds = append(preds, Predicate{Field: FieldAmount, Op: OpLTE, Number: *criteria.MaxAmount})
	}

	// NONE is the "unset" sentinel, never a value to match on.
	if criteria.Type != "" && criteria.Type != domain.TypeNone {
		preds = append(preds, Predicate{Field: FieldType, Op: OpEqualFold, Text: string(criteria.Type)})
	}
	if criteria.Category != "" && criteria.Category != domain.CategoryNone {
		preds = append(preds, Predicate{Field: FieldCategory, Op: OpEqualFold, Text: string(criteria.Category)})
	}

	if desc := strings.TrimSpace(criteria.DescriptionContains); desc != "" {
		preds = append(preds, Predicate{Field: FieldDescription, Op: OpContainsAll, Text: desc})
	}

	if criteria.FromDate != nil {
		preds = append(preds, Predicate{Field: FieldDate, Op: OpOnOrAfter, Time: startOfDay(*criteria.FromDate)})
	}
	if criteria.ToDate != nil {
		preds = append(preds, Predicate{Field: FieldDate, Op: OpBefore, Time: startOfDay(criteria.ToDate.AddDays(1))})
	}

	return preds
}

// Matches reports whether a transaction satisfies every predicate in the set.
func Matches(tx domain.Transaction, preds []Predicate) bool {
	for _, p := range preds {
		if !matchOne(tx, p) {
			return false
		}
	}
	return true
}

func matchOne(tx domain.Transaction, p Predicate) bool {
	switch p.Op {
	case OpGTE:
		return tx.Amount >= p.Number
	case OpLTE:
		return tx.Amount <= p.Number
	case OpEqualFold:
		return strings.EqualFold(fieldText(tx, p.Field), p.Text)
	case OpContainsAll:
		haystack := strings.ToLower(fieldText(tx, p.Field))
		for _, term := range strings.Fields(strings.ToLower(p.Text)) {
			if !strings.Contains(haystack, term) {
				return false
			}
		}
		return true
	case OpOnOrAfter:
		return !tx.Date.Before(p.Time)
	case OpBefore:
		return tx.Date.Before(p.Time)
	}
	return false
}

func fieldText(tx domain.Transaction, f Field) string {
	switch f {
	case FieldType:
		return string(tx.Type)
	case FieldCategory:
		return string(tx.Category)
	case FieldDescription:
		return tx.Description
	}
	return ""
}

// startOfDay converts a civil date to the first instant of that day in the
// local zone.
func startOfDay(d civil.Date) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.Local)
}
