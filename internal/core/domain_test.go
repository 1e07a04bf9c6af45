package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategoryType(t *testing.T) {
	for in, want := range map[string]CategoryType{
		"INCOME": Income, "inc": Income, "EXP": Expense, " expense ": Expense,
	} {
		got, ok := ParseCategoryType(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	_, ok := ParseCategoryType("TRANSFER")
	assert.False(t, ok)
	assert.Equal(t, "Income", Income.Label())
}

func TestTypeOf_DerivedFromCategory(t *testing.T) {
	cats := []Category{{ID: 1, Type: Expense}, {ID: 2, Type: Income}}

	typ, ok := TypeOf(Transaction{CategoryID: 2}, cats)
	require.True(t, ok)
	assert.Equal(t, Income, typ)

	cats[1].Type = Expense
	typ, _ = TypeOf(Transaction{CategoryID: 2}, cats)
	assert.Equal(t, Expense, typ, "follows the category after an edit")

	_, ok = TypeOf(Transaction{CategoryID: 9}, cats)
	assert.False(t, ok)
}

func TestEntityValidate(t *testing.T) {
	assert.NoError(t, Account{Name: "Cash", Currency: "EUR"}.Validate())
	assert.ErrorIs(t, Account{Currency: "EUR"}.Validate(), &ValidationError{Kind: MissingRequiredField, Field: "name"})
	assert.ErrorIs(t, Account{Name: "Cash"}.Validate(), &ValidationError{Kind: MissingRequiredField, Field: "currency"})

	assert.NoError(t, Category{Name: "Food", Type: Expense}.Validate())
	assert.ErrorIs(t, Category{Name: "Food"}.Validate(), ErrInvalidValue)

	assert.NoError(t, Person{Name: "Ann"}.Validate())
	assert.NoError(t, Person{Name: "Ann", Email: "ann@example.com"}.Validate())
	assert.ErrorIs(t, Person{Name: "Ann", Email: "not-an-email"}.Validate(), &ValidationError{Kind: InvalidValue, Field: "email"})
	assert.ErrorIs(t, Person{Name: "Ann", Email: "Ann <ann@example.com>"}.Validate(), ErrInvalidValue)
	assert.ErrorIs(t, Person{}.Validate(), ErrMissingField)
}

func TestNormalizeCategories(t *testing.T) {
	var raws []RawCategory
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id":1,"name":"Salary","type":"INC"},
		{"id":2,"name":"Transfer","type":"TRF"},
		{"id":3,"name":"Food","type":"EXP"}
	]`), &raws))

	got := NormalizeCategories(raws)
	assert.Equal(t, []Category{
		{ID: 1, Name: "Salary", Type: Income},
		{ID: 3, Name: "Food", Type: Expense},
	}, got)

	assert.Equal(t, "EXP", DenormalizeCategory(got[1]).Type)
}

func TestAccountRoundTrip(t *testing.T) {
	var raw RawAccount
	require.NoError(t, json.Unmarshal([]byte(`{"id":4,"name":"Bank","currency":"EUR","openingBalance":120.5}`), &raw))
	a := NormalizeAccount(raw)
	assert.Equal(t, "120.5", a.OpeningBalance.String())
	assert.False(t, a.Balance.Valid)

	b, err := json.Marshal(DenormalizeAccount(a))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":4,"name":"Bank","currency":"EUR","openingBalance":120.5,"balance":null}`, string(b))
}
