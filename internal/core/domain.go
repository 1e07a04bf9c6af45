package core

import (
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Income  CategoryType = "INCOME"
	Expense CategoryType = "EXPENSE"
)

type (
	CategoryType string

	Account struct {
		ID             int64
		Name           string
		Currency       string // free text, e.g. "EUR"
		OpeningBalance decimal.Decimal
		Balance        decimal.NullDecimal // running balance when the gateway reports one
		Remarks        string
	}

	Category struct {
		ID      int64
		Name    string
		Type    CategoryType
		Remarks string
	}

	Person struct {
		ID        int64
		Name      string
		ContactNo string
		Email     string
		Remarks   string
	}

	// Transaction is the internal shape of a ledger row. Exactly one of Debit
	// and Credit must be present before the row can be submitted; while a form
	// is being edited both may transiently be absent.
	// PersonID is 0 when no person is referenced.
	Transaction struct {
		ID         int64
		Date       string // YYYY-MM-DD, or the gateway's verbatim value when unparseable
		CategoryID int64
		AccountID  int64
		PersonID   int64
		Debit      decimal.NullDecimal
		Credit     decimal.NullDecimal
		Remarks    string
	}
)

// ParseCategoryType accepts the internal names and the gateway's short flags.
func ParseCategoryType(s string) (CategoryType, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INCOME", "INC":
		return Income, true
	case "EXPENSE", "EXP":
		return Expense, true
	}
	return "", false
}

// Label is the human name used for grouping in pickers.
func (t CategoryType) Label() string {
	switch t {
	case Income:
		return "Income"
	case Expense:
		return "Expense"
	}
	return string(t)
}

// IsNew reports whether the transaction has never been saved.
func (t Transaction) IsNew() bool {
	return t.ID == 0
}

// TypeOf derives a transaction's type from its category. The type is never
// stored on the transaction itself.
func TypeOf(t Transaction, categories []Category) (CategoryType, bool) {
	for _, c := range categories {
		if c.ID == t.CategoryID {
			return c.Type, true
		}
	}
	return "", false
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return missingField("name", "Account name is required")
	}
	if strings.TrimSpace(a.Currency) == "" {
		return missingField("currency", "Currency is required")
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return missingField("name", "Category name is required")
	}
	if c.Type != Income && c.Type != Expense {
		return invalidField("type", "Category type must be INCOME or EXPENSE")
	}
	return nil
}

func (p Person) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return missingField("name", "Person name is required")
	}
	if email := strings.TrimSpace(p.Email); email != "" {
		addr, err := mail.ParseAddress(email)
		if err != nil || addr.Address != email {
			return invalidField("email", "Invalid email format")
		}
	}
	return nil
}
