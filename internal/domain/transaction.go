package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateFormat is the wire format for calendar dates produced by the model.
const DateFormat = "2006-01-02"

// Type is the direction of a transaction.
type Type string

const (
	TypeIncome  Type = "INCOME"
	TypeExpense Type = "EXPENSE"
	TypeNone    Type = "NONE"
)

// Types lists every valid transaction type, in declaration order.
func Types() []Type {
	return []Type{TypeIncome, TypeExpense, TypeNone}
}

// ParseType converts a raw string into a Type, ignoring case and
// surrounding whitespace. An empty string parses to TypeNone.
func ParseType(s string) (Type, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	if norm == "" {
		return TypeNone, nil
	}
	for _, t := range Types() {
		if string(t) == norm {
			return t, nil
		}
	}
	return TypeNone, fmt.Errorf("ParseType: unknown transaction type %q", s)
}

// Category is the spending/earning category of a transaction.
type Category string

const (
	CategoryFood               Category = "FOOD"
	CategoryDrink              Category = "DRINK"
	CategoryParty              Category = "PARTY"
	CategoryClothes            Category = "CLOTHES"
	CategorySalary             Category = "SALARY"
	CategoryInvestmentInterest Category = "INVESTMENT_INTEREST"
	CategoryOther              Category = "OTHER"
	CategoryNone               Category = "NONE"
)

// Categories lists every valid transaction category, in declaration order.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryDrink,
		CategoryParty,
		CategoryClothes,
		CategorySalary,
		CategoryInvestmentInterest,
		CategoryOther,
		CategoryNone,
	}
}

// ParseCategory converts a raw string into a Category, ignoring case and
// surrounding whitespace. An empty string parses to CategoryNone.
func ParseCategory(s string) (Category, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	if norm == "" {
		return CategoryNone, nil
	}
	for _, c := range Categories() {
		if string(c) == norm {
			return c, nil
		}
	}
	return CategoryNone, fmt.Errorf("ParseCategory: unknown transaction category %q", s)
}

// DisplayName formats an enum constant name for presentation:
// "INVESTMENT_INTEREST" becomes "Investment interest".
// Formatting is kept out of the enum types themselves so the domain
// model stays free of presentation concerns.
func DisplayName(name string) string {
	if name == "" {
		return ""
	}
	s := strings.ToLower(strings.ReplaceAll(name, "_", " "))
	return strings.ToUpper(s[:1]) + s[1:]
}

// Transaction is one financial-transaction record.
// ID is assigned by the record store on create; extraction never sets it
// and the model is never allowed to invent one.
type Transaction struct {
	ID          string    `json:"id,omitempty"`
	Amount      float64   `json:"amount"`
	Type        Type      `json:"type"`
	Category    Category  `json:"category"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}
