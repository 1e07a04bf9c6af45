package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amt(s string) decimal.NullDecimal {
	return Amount(decimal.RequireFromString(s))
}

func exactlyOne(tx Transaction) bool {
	return tx.Debit.Valid != tx.Credit.Valid
}

func TestNormalizeOnLoad_BothAbsentDefaultsDebitToZero(t *testing.T) {
	tx := NormalizeOnLoad(RawTransaction{TransDate: "2024-03-01", Type: "EXP"})

	assert.Equal(t, "2024-03-01", tx.Date)
	require.True(t, tx.Debit.Valid)
	assert.True(t, tx.Debit.Decimal.IsZero())
	assert.False(t, tx.Credit.Valid)
}

func TestNormalizeOnLoad_ExactlyOne(t *testing.T) {
	cases := []struct {
		name          string
		debit, credit decimal.NullDecimal
		wantDebit     string
		wantCredit    string
	}{
		{"both absent", decimal.NullDecimal{}, decimal.NullDecimal{}, "0", ""},
		{"debit only", amt("12.5"), decimal.NullDecimal{}, "12.5", ""},
		{"credit only", decimal.NullDecimal{}, amt("7"), "", "7"},
		{"both present debit wins", amt("3"), amt("4"), "3", ""},
		{"zero credit kept", decimal.NullDecimal{}, amt("0"), "", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := NormalizeOnLoad(RawTransaction{TransDate: "2024-01-01", DebitAmount: tc.debit, CreditAmount: tc.credit})
			assert.True(t, exactlyOne(tx))
			if tc.wantDebit != "" {
				require.True(t, tx.Debit.Valid)
				assert.True(t, tx.Debit.Decimal.Equal(decimal.RequireFromString(tc.wantDebit)))
			}
			if tc.wantCredit != "" {
				require.True(t, tx.Credit.Valid)
				assert.True(t, tx.Credit.Decimal.Equal(decimal.RequireFromString(tc.wantCredit)))
			}
		})
	}
}

func TestNormalizeOnLoad_Dates(t *testing.T) {
	cases := map[string]string{
		"2024-03-01":                "2024-03-01",
		"2024-03-01T10:20:30":       "2024-03-01",
		"2024-03-01T23:30:00Z":      "2024-03-01",
		"2024-03-01T01:00:00+02:00": "2024-02-29",
		"2024-03-01 08:00:00":       "2024-03-01",
		"03/15/2024":                "2024-03-15",
		"yesterday-ish":             "yesterday-ish",
		"":                          "",
	}
	for in, want := range cases {
		tx := NormalizeOnLoad(RawTransaction{TransDate: in})
		assert.Equal(t, want, tx.Date, "input %q", in)
	}
}

func TestNormalizeOnLoad_FromWire(t *testing.T) {
	body := `{"id":9,"transDate":"2024-05-02","categoryId":3,"accountId":4,"personId":null,"debitAmount":null,"creditAmount":75.25,"remarks":"salary","type":"INC"}`
	var raw RawTransaction
	require.NoError(t, json.Unmarshal([]byte(body), &raw))

	tx := NormalizeOnLoad(raw)
	assert.Equal(t, int64(9), tx.ID)
	assert.Equal(t, int64(3), tx.CategoryID)
	assert.Equal(t, int64(4), tx.AccountID)
	assert.Zero(t, tx.PersonID)
	assert.False(t, tx.Debit.Valid)
	assert.Equal(t, "75.25", tx.Credit.Decimal.String())
	assert.Equal(t, "salary", tx.Remarks)
}

func TestValidateForSubmit(t *testing.T) {
	base := Transaction{Date: "2024-01-01", CategoryID: 1, AccountID: 2}

	t.Run("missing amount", func(t *testing.T) {
		_, err := ValidateForSubmit(base)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingAmount))
	})

	t.Run("conflicting amounts", func(t *testing.T) {
		tx := base
		tx.Debit, tx.Credit = amt("1"), amt("2")
		_, err := ValidateForSubmit(tx)
		assert.ErrorIs(t, err, ErrConflictingAmounts)
	})

	t.Run("exactly one accepted unchanged", func(t *testing.T) {
		tx := base
		tx.Credit = amt("10")
		tx.Remarks = "ok"
		got, err := ValidateForSubmit(tx)
		require.NoError(t, err)
		assert.Equal(t, tx, got)
	})

	t.Run("zero debit is present", func(t *testing.T) {
		tx := base
		tx.Debit = amt("0")
		_, err := ValidateForSubmit(tx)
		assert.NoError(t, err)
	})

	for _, field := range []string{"date", "categoryId", "accountId"} {
		t.Run("missing "+field, func(t *testing.T) {
			tx := base
			tx.Debit = amt("1")
			switch field {
			case "date":
				tx.Date = "  "
			case "categoryId":
				tx.CategoryID = 0
			case "accountId":
				tx.AccountID = 0
			}
			_, err := ValidateForSubmit(tx)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, MissingRequiredField, ve.Kind)
			assert.Equal(t, field, ve.Field)
		})
	}

	t.Run("required fields before amounts", func(t *testing.T) {
		_, err := ValidateForSubmit(Transaction{})
		assert.ErrorIs(t, err, &ValidationError{Kind: MissingRequiredField, Field: "date"})
	})
}

func TestForCopy(t *testing.T) {
	src := Transaction{ID: 42, Date: "2024-01-01", Credit: amt("75"), CategoryID: 3, AccountID: 4, PersonID: 5, Remarks: "rent"}

	cp := ForCopy(src, "2025-06-30")

	assert.True(t, cp.IsNew())
	assert.Equal(t, "2025-06-30", cp.Date)
	assert.False(t, cp.Debit.Valid)
	assert.Equal(t, "75", cp.Credit.Decimal.String())
	assert.Equal(t, int64(3), cp.CategoryID)
	assert.Equal(t, int64(4), cp.AccountID)
	assert.Equal(t, int64(5), cp.PersonID)
	assert.Equal(t, "rent", cp.Remarks)
	assert.Equal(t, int64(42), src.ID, "source untouched")
}

func TestForCopy_ResolvesAmounts(t *testing.T) {
	cp := ForCopy(Transaction{Debit: amt("1"), Credit: amt("2")}, "2025-01-01")
	assert.Equal(t, "1", cp.Debit.Decimal.String())
	assert.False(t, cp.Credit.Valid)

	cp = ForCopy(Transaction{}, "2025-01-01")
	assert.True(t, cp.Debit.Valid)
	assert.True(t, cp.Debit.Decimal.IsZero())
}

func TestSetDebitSetCredit_MutualExclusion(t *testing.T) {
	tx := Transaction{Credit: amt("5")}

	tx.SetDebit(amt("3"))
	assert.Equal(t, "3", tx.Debit.Decimal.String())
	assert.False(t, tx.Credit.Valid)

	again := tx
	again.SetDebit(amt("3"))
	assert.Equal(t, tx, again, "idempotent")

	tx.SetCredit(amt("8"))
	assert.False(t, tx.Debit.Valid)
	assert.Equal(t, "8", tx.Credit.Decimal.String())

	tx.SetDebit(decimal.NullDecimal{})
	assert.False(t, tx.Debit.Valid)
	assert.True(t, tx.Credit.Valid, "clearing debit leaves credit alone")
}

func TestDenormalizeForSave(t *testing.T) {
	cats := []Category{{ID: 1, Name: "Food", Type: Expense}, {ID: 2, Name: "Salary", Type: Income}}

	raw := DenormalizeForSave(Transaction{Date: "2024-01-02", CategoryID: 2, AccountID: 3, Credit: amt("100")}, cats)
	assert.Nil(t, raw.PersonID)
	assert.Equal(t, "INC", raw.Type)

	b, err := json.Marshal(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"transDate":"2024-01-02","categoryId":2,"accountId":3,"personId":null,"debitAmount":null,"creditAmount":100,"remarks":"","type":"INC"}`, string(b))

	raw = DenormalizeForSave(Transaction{ID: 7, PersonID: 9, CategoryID: 1}, cats)
	require.NotNil(t, raw.PersonID)
	assert.Equal(t, int64(9), *raw.PersonID)
	assert.Equal(t, int64(7), raw.ID)
	assert.Equal(t, "EXP", raw.Type)
}

func TestDenormalizeForSave_ZeroAmountsGoOutAsNull(t *testing.T) {
	loaded := NormalizeOnLoad(RawTransaction{ID: 4, TransDate: "2024-01-02", CategoryID: 1, AccountID: 1})
	require.True(t, loaded.Debit.Valid)

	raw := DenormalizeForSave(loaded, nil)
	assert.False(t, raw.DebitAmount.Valid)
	assert.False(t, raw.CreditAmount.Valid)

	raw = DenormalizeForSave(Transaction{Credit: amt("0.00")}, nil)
	assert.False(t, raw.CreditAmount.Valid)

	raw = DenormalizeForSave(Transaction{Debit: amt("0.01")}, nil)
	assert.True(t, raw.DebitAmount.Decimal.Equal(decimal.RequireFromString("0.01")))
}
