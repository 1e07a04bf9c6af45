package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TriState constrains the presence of an amount in a filter.
type TriState int

const (
	Unconstrained TriState = iota
	RequirePresent
	RequireAbsent
)

// ParseTriState reads the query form: "yes"/"true"/"1" and "no"/"false"/"0".
// Anything else is unconstrained.
func ParseTriState(s string) TriState {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "present":
		return RequirePresent
	case "no", "false", "0", "absent":
		return RequireAbsent
	}
	return Unconstrained
}

func (t TriState) String() string {
	switch t {
	case RequirePresent:
		return "yes"
	case RequireAbsent:
		return "no"
	}
	return ""
}

// FilterSpec narrows a transaction list. Zero values are unconstrained.
type FilterSpec struct {
	FromDate   string
	ToDate     string
	CategoryID int64
	AccountID  int64
	PersonID   int64
	HasDebit   TriState
	HasCredit  TriState
	Remarks    string
}

// IsZero reports whether every field is unconstrained.
func (s FilterSpec) IsZero() bool {
	return s == FilterSpec{}
}

// Apply returns the transactions satisfying every constraint of spec, in
// input order. The input slice is never modified.
func Apply(txs []Transaction, spec FilterSpec) []Transaction {
	if spec.IsZero() {
		out := make([]Transaction, len(txs))
		copy(out, txs)
		return out
	}
	m := spec.compile()
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if m.matches(tx) {
			out = append(out, tx)
		}
	}
	return out
}

// Matches reports whether a single transaction passes spec.
func (s FilterSpec) Matches(tx Transaction) bool {
	return s.compile().matches(tx)
}

type matcher struct {
	FilterSpec
	from, to string
	remarks  string
}

func (s FilterSpec) compile() matcher {
	return matcher{
		FilterSpec: s,
		from:       canonicalOrVerbatim(s.FromDate),
		to:         canonicalOrVerbatim(s.ToDate),
		remarks:    strings.ToLower(s.Remarks),
	}
}

func (m matcher) matches(tx Transaction) bool {
	if m.from != "" && tx.Date < m.from {
		return false
	}
	if m.to != "" && tx.Date > m.to {
		return false
	}
	if m.CategoryID != 0 && tx.CategoryID != m.CategoryID {
		return false
	}
	if m.AccountID != 0 && tx.AccountID != m.AccountID {
		return false
	}
	if m.PersonID != 0 && tx.PersonID != m.PersonID {
		return false
	}
	if !amountPasses(m.HasDebit, tx.Debit) || !amountPasses(m.HasCredit, tx.Credit) {
		return false
	}
	if m.remarks != "" && !strings.Contains(strings.ToLower(tx.Remarks), m.remarks) {
		return false
	}
	return true
}

// Zero counts as absent here, unlike the exactly-one rule.
func amountPasses(want TriState, v decimal.NullDecimal) bool {
	switch want {
	case RequirePresent:
		return nonZero(v)
	case RequireAbsent:
		return !positive(v)
	}
	return true
}
