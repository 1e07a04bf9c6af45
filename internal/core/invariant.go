package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeOnLoad maps a gateway record into the internal shape.
//
// The result always has exactly one of Debit and Credit present:
// both absent becomes a zero debit, and when both are present the debit
// wins. The zero debit only fills the form; DenormalizeForSave sends it back
// as null, so a record that arrived without amounts leaves without them. A
// date that cannot be parsed is kept verbatim.
func NormalizeOnLoad(raw RawTransaction) Transaction {
	tx := Transaction{
		ID:         raw.ID,
		Date:       canonicalOrVerbatim(raw.TransDate),
		CategoryID: raw.CategoryID,
		AccountID:  raw.AccountID,
		Remarks:    raw.Remarks,
	}
	if raw.PersonID != nil {
		tx.PersonID = *raw.PersonID
	}
	tx.Debit, tx.Credit = resolveAmounts(raw.DebitAmount, raw.CreditAmount)
	return tx
}

// NormalizeAll applies NormalizeOnLoad to every record, preserving order.
func NormalizeAll(raws []RawTransaction) []Transaction {
	out := make([]Transaction, len(raws))
	for i, r := range raws {
		out[i] = NormalizeOnLoad(r)
	}
	return out
}

func resolveAmounts(debit, credit decimal.NullDecimal) (decimal.NullDecimal, decimal.NullDecimal) {
	switch {
	case !debit.Valid && !credit.Valid:
		return Amount(decimal.Zero), decimal.NullDecimal{}
	case debit.Valid && credit.Valid:
		return debit, decimal.NullDecimal{}
	}
	return debit, credit
}

// ValidateForSubmit reports whether tx may be sent to the gateway. Required
// fields are checked first (date, category, account), then the exactly-one
// amount rule. On success the candidate is returned unchanged.
func ValidateForSubmit(tx Transaction) (Transaction, error) {
	if strings.TrimSpace(tx.Date) == "" {
		return Transaction{}, missingField("date", "Date is required")
	}
	if tx.CategoryID == 0 {
		return Transaction{}, missingField("categoryId", "Category is required")
	}
	if tx.AccountID == 0 {
		return Transaction{}, missingField("accountId", "Account is required")
	}
	switch {
	case !tx.Debit.Valid && !tx.Credit.Valid:
		return Transaction{}, &ValidationError{
			Kind:    MissingAmount,
			Field:   "amount",
			Message: "Either debit or credit amount must be provided",
		}
	case tx.Debit.Valid && tx.Credit.Valid:
		return Transaction{}, &ValidationError{
			Kind:    ConflictingAmounts,
			Field:   "amount",
			Message: "Cannot have both debit and credit amounts",
		}
	}
	return tx, nil
}

// ForCopy builds an unsaved duplicate of src dated today.
func ForCopy(src Transaction, today string) Transaction {
	cp := src
	cp.ID = 0
	cp.Date = today
	cp.Debit, cp.Credit = resolveAmounts(src.Debit, src.Credit)
	return cp
}

// SetDebit assigns the debit amount. A present value clears the credit.
func (t *Transaction) SetDebit(v decimal.NullDecimal) {
	t.Debit = v
	if v.Valid {
		t.Credit = decimal.NullDecimal{}
	}
}

// SetCredit assigns the credit amount. A present value clears the debit.
func (t *Transaction) SetCredit(v decimal.NullDecimal) {
	t.Credit = v
	if v.Valid {
		t.Debit = decimal.NullDecimal{}
	}
}

// DenormalizeForSave produces the outbound record for create and update. The
// type flag is derived from the referenced category when it is known. Zero
// amounts go out as null; the gateway never receives a zero debit or credit.
func DenormalizeForSave(tx Transaction, categories []Category) RawTransaction {
	raw := RawTransaction{
		ID:           tx.ID,
		TransDate:    tx.Date,
		CategoryID:   tx.CategoryID,
		AccountID:    tx.AccountID,
		DebitAmount:  wireAmount(tx.Debit),
		CreditAmount: wireAmount(tx.Credit),
		Remarks:      tx.Remarks,
	}
	if tx.PersonID != 0 {
		id := tx.PersonID
		raw.PersonID = &id
	}
	if t, ok := TypeOf(tx, categories); ok {
		raw.Type = WireType(t)
	}
	return raw
}

func wireAmount(n decimal.NullDecimal) decimal.NullDecimal {
	if !n.Valid || n.Decimal.IsZero() {
		return decimal.NullDecimal{}
	}
	return n
}
