package store

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/finance-assistant/internal/domain"
)

func TestCompile_EmptyCriteriaSelectsAll(t *testing.T) {
	if preds := Compile(domain.SearchCriteria{}); len(preds) != 0 {
		t.Errorf("Compile(empty) = %d predicates, want 0", len(preds))
	}

	// NONE sentinels and blank description are "unset", not filters.
	criteria := domain.SearchCriteria{
		Type:                domain.TypeNone,
		Category:            domain.CategoryNone,
		DescriptionContains: "   ",
	}
	if preds := Compile(criteria); len(preds) != 0 {
		t.Errorf("Compile(sentinels) = %d predicates, want 0", len(preds))
	}
}

func TestCompile_AllFields(t *testing.T) {
	minAmount, maxAmount := 100000.0, 500000.0
	from := civil.Date{Year: 2024, Month: 1, Day: 1}
	to := civil.Date{Year: 2024, Month: 1, Day: 31}

	criteria := domain.SearchCriteria{
		MinAmount:           &minAmount,
		MaxAmount:           &maxAmount,
		Type:                domain.TypeExpense,
		Category:            domain.CategoryFood,
		DescriptionContains: "lunch",
		FromDate:            &from,
		ToDate:              &to,
	}

	preds := Compile(criteria)
	if len(preds) != 7 {
		t.Fatalf("Compile() = %d predicates, want 7", len(preds))
	}

	byOp := make(map[Op]Predicate)
	for _, p := range preds {
		byOp[p.Op] = p
	}

	if p := byOp[OpGTE]; p.Number != minAmount {
		t.Errorf("min amount predicate = %v, want %v", p.Number, minAmount)
	}
	if p := byOp[OpLTE]; p.Number != maxAmount {
		t.Errorf("max amount predicate = %v, want %v", p.Number, maxAmount)
	}
	if p := byOp[OpOnOrAfter]; !p.Time.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)) {
		t.Errorf("from date predicate = %v, want start of 2024-01-01", p.Time)
	}
	// The upper bound is the first instant of the day after toDate, so the
	// whole of toDate itself is included.
	if p := byOp[OpBefore]; !p.Time.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local)) {
		t.Errorf("to date predicate = %v, want start of 2024-02-01", p.Time)
	}
}

func TestMatches_DateRangeInclusive(t *testing.T) {
	day := civil.Date{Year: 2024, Month: 1, Day: 10}
	preds := Compile(domain.SearchCriteria{FromDate: &day, ToDate: &day})

	tx := func(date time.Time) domain.Transaction {
		return domain.Transaction{Amount: 10, Type: domain.TypeExpense, Date: date}
	}

	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{"start of the day", time.Date(2024, 1, 10, 0, 0, 0, 0, time.Local), true},
		{"midday", time.Date(2024, 1, 10, 12, 30, 0, 0, time.Local), true},
		{"last instant of the day", time.Date(2024, 1, 10, 23, 59, 59, int(time.Second - time.Nanosecond), time.Local), true},
		{"first instant of the next day", time.Date(2024, 1, 11, 0, 0, 0, 0, time.Local), false},
		{"day before", time.Date(2024, 1, 9, 23, 0, 0, 0, time.Local), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tx(tt.date), preds); got != tt.want {
				t.Errorf("Matches(%v) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestMatches_FieldPredicates(t *testing.T) {
	tx := domain.Transaction{
		Amount:      150000,
		Type:        domain.TypeExpense,
		Category:    domain.CategoryFood,
		Description: "Lunch with the team at Saigon Deli",
		Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local),
	}

	tests := []struct {
		name string
		pred Predicate
		want bool
	}{
		{"amount at lower bound", Predicate{Field: FieldAmount, Op: OpGTE, Number: 150000}, true},
		{"amount below min", Predicate{Field: FieldAmount, Op: OpGTE, Number: 150001}, false},
		{"amount at upper bound", Predicate{Field: FieldAmount, Op: OpLTE, Number: 150000}, true},
		{"type case-insensitive", Predicate{Field: FieldType, Op: OpEqualFold, Text: "expense"}, true},
		{"type mismatch", Predicate{Field: FieldType, Op: OpEqualFold, Text: "INCOME"}, false},
		{"category case-insensitive", Predicate{Field: FieldCategory, Op: OpEqualFold, Text: "Food"}, true},
		{"all terms present", Predicate{Field: FieldDescription, Op: OpContainsAll, Text: "lunch team"}, true},
		{"one term missing", Predicate{Field: FieldDescription, Op: OpContainsAll, Text: "lunch taxi"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tx, []Predicate{tt.pred}); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}

	// Conjunction: all predicates must hold.
	preds := []Predicate{
		{Field: FieldAmount, Op: OpGTE, Number: 100000},
		{Field: FieldType, Op: OpEqualFold, Text: "EXPENSE"},
		{Field: FieldDescription, Op: OpContainsAll, Text: "taxi"},
	}
	if Matches(tx, preds) {
		t.Error("Matches() = true with a failing conjunct, want false")
	}
}

func TestMatches_EmptySetSelectsAll(t *testing.T) {
	if !Matches(domain.Transaction{}, nil) {
		t.Error("Matches(tx, nil) = false, want true")
	}
}
