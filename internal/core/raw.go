package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// The gateway expects JSON numbers for amounts, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Gateway wire shapes. These are the only types that know the server's field
// names; everything past NormalizeOnLoad and the Normalize* helpers works with
// the internal entities.
type (
	RawTransaction struct {
		ID           int64               `json:"id,omitempty"`
		TransDate    string              `json:"transDate"`
		CategoryID   int64               `json:"categoryId"`
		AccountID    int64               `json:"accountId"`
		PersonID     *int64              `json:"personId"`
		DebitAmount  decimal.NullDecimal `json:"debitAmount"`
		CreditAmount decimal.NullDecimal `json:"creditAmount"`
		Remarks      string              `json:"remarks"`
		Type         string              `json:"type,omitempty"` // "INC" | "EXP", informational only
	}

	RawAccount struct {
		ID             int64               `json:"id,omitempty"`
		Name           string              `json:"name"`
		Currency       string              `json:"currency"`
		OpeningBalance decimal.Decimal     `json:"openingBalance"`
		Balance        decimal.NullDecimal `json:"balance,omitempty"`
		Remarks        string              `json:"remarks,omitempty"`
	}

	RawCategory struct {
		ID      int64  `json:"id,omitempty"`
		Name    string `json:"name"`
		Type    string `json:"type"`
		Remarks string `json:"remarks,omitempty"`
	}

	RawPerson struct {
		ID        int64  `json:"id,omitempty"`
		Name      string `json:"name"`
		ContactNo string `json:"contactNo,omitempty"`
		Email     string `json:"email,omitempty"`
		Remarks   string `json:"remarks,omitempty"`
	}

	RawAccountTotal struct {
		AccountName    string          `json:"accountName"`
		Currency       string          `json:"currency"`
		OpeningBalance decimal.Decimal `json:"openingBalance"`
		TotalCredit    decimal.Decimal `json:"totalCredit"`
		TotalDebit     decimal.Decimal `json:"totalDebit"`
		Balance        decimal.Decimal `json:"balance"`
	}

	RawCategoryTotal struct {
		CategoryName string          `json:"categoryName"`
		Total        decimal.Decimal `json:"total"`
		Type         string          `json:"type"`
	}
)

// Short type flags used on the wire.
const (
	wireIncome  = "INC"
	wireExpense = "EXP"
)

// WireType maps an internal category type to the gateway flag.
func WireType(t CategoryType) string {
	if t == Income {
		return wireIncome
	}
	return wireExpense
}

func NormalizeAccount(r RawAccount) Account {
	return Account{
		ID:             r.ID,
		Name:           r.Name,
		Currency:       r.Currency,
		OpeningBalance: r.OpeningBalance,
		Balance:        r.Balance,
		Remarks:        r.Remarks,
	}
}

func DenormalizeAccount(a Account) RawAccount {
	return RawAccount{
		ID:             a.ID,
		Name:           strings.TrimSpace(a.Name),
		Currency:       strings.TrimSpace(a.Currency),
		OpeningBalance: a.OpeningBalance,
		Balance:        a.Balance,
		Remarks:        a.Remarks,
	}
}

// NormalizeCategories keeps only rows flagged INC or EXP, in order. Rows with
// any other flag are not usable as transaction categories.
func NormalizeCategories(raws []RawCategory) []Category {
	out := make([]Category, 0, len(raws))
	for _, r := range raws {
		c, ok := NormalizeCategory(r)
		if !ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

func NormalizeCategory(r RawCategory) (Category, bool) {
	var t CategoryType
	switch r.Type {
	case wireIncome:
		t = Income
	case wireExpense:
		t = Expense
	default:
		return Category{}, false
	}
	return Category{ID: r.ID, Name: r.Name, Type: t, Remarks: r.Remarks}, true
}

func DenormalizeCategory(c Category) RawCategory {
	return RawCategory{
		ID:      c.ID,
		Name:    strings.TrimSpace(c.Name),
		Type:    WireType(c.Type),
		Remarks: c.Remarks,
	}
}

func NormalizePerson(r RawPerson) Person {
	return Person{ID: r.ID, Name: r.Name, ContactNo: r.ContactNo, Email: r.Email, Remarks: r.Remarks}
}

func DenormalizePerson(p Person) RawPerson {
	return RawPerson{
		ID:        p.ID,
		Name:      strings.TrimSpace(p.Name),
		ContactNo: strings.TrimSpace(p.ContactNo),
		Email:     strings.TrimSpace(p.Email),
		Remarks:   p.Remarks,
	}
}
