package core

import (
	"slices"
	"sort"

	"github.com/shopspring/decimal"
)

// AccountTotal is the per-account dashboard row.
type AccountTotal struct {
	AccountName    string          `json:"accountName"`
	Currency       string          `json:"currency"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	TotalCredit    decimal.Decimal `json:"totalCredit"`
	TotalDebit     decimal.Decimal `json:"totalDebit"`
	Balance        decimal.Decimal `json:"balance"`
}

// CategoryTotal aggregates the amounts booked against one category.
type CategoryTotal struct {
	CategoryName string          `json:"categoryName"`
	Type         CategoryType    `json:"type"`
	Total        decimal.Decimal `json:"total"`
}

func NormalizeAccountTotal(r RawAccountTotal) AccountTotal {
	return AccountTotal(r)
}

func NormalizeCategoryTotal(r RawCategoryTotal) CategoryTotal {
	t, _ := ParseCategoryType(r.Type)
	return CategoryTotal{CategoryName: r.CategoryName, Type: t, Total: r.Total}
}

func DenormalizeAccountTotal(t AccountTotal) RawAccountTotal {
	return RawAccountTotal(t)
}

func DenormalizeCategoryTotal(t CategoryTotal) RawCategoryTotal {
	return RawCategoryTotal{CategoryName: t.CategoryName, Total: t.Total, Type: WireType(t.Type)}
}

// SummarizeAccounts computes balance = opening + credits - debits for every
// account, in account order. Backends that hold the raw data themselves use
// this in place of a server-side aggregate.
func SummarizeAccounts(accounts []Account, txs []Transaction) []AccountTotal {
	idx := make(map[int64]int, len(accounts))
	out := make([]AccountTotal, len(accounts))
	for i, a := range accounts {
		idx[a.ID] = i
		out[i] = AccountTotal{
			AccountName:    a.Name,
			Currency:       a.Currency,
			OpeningBalance: a.OpeningBalance,
		}
	}
	for _, tx := range txs {
		i, ok := idx[tx.AccountID]
		if !ok {
			continue
		}
		if tx.Credit.Valid {
			out[i].TotalCredit = out[i].TotalCredit.Add(tx.Credit.Decimal)
		}
		if tx.Debit.Valid {
			out[i].TotalDebit = out[i].TotalDebit.Add(tx.Debit.Decimal)
		}
	}
	for i := range out {
		out[i].Balance = out[i].OpeningBalance.Add(out[i].TotalCredit).Sub(out[i].TotalDebit)
	}
	return out
}

// SummarizeCategories sums debit plus credit per category. Categories without
// any transaction are omitted; the result is sorted by total, largest first.
func SummarizeCategories(categories []Category, txs []Transaction) []CategoryTotal {
	byID := make(map[int64]*CategoryTotal, len(categories))
	var order []int64
	for _, c := range categories {
		byID[c.ID] = &CategoryTotal{CategoryName: c.Name, Type: c.Type}
	}
	for _, tx := range txs {
		ct, ok := byID[tx.CategoryID]
		if !ok {
			continue
		}
		if ct.Total.IsZero() && !slices.Contains(order, tx.CategoryID) {
			order = append(order, tx.CategoryID)
		}
		if tx.Debit.Valid {
			ct.Total = ct.Total.Add(tx.Debit.Decimal)
		}
		if tx.Credit.Valid {
			ct.Total = ct.Total.Add(tx.Credit.Decimal)
		}
	}
	out := make([]CategoryTotal, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.GreaterThan(out[j].Total)
	})
	return out
}
