package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	ok := map[string]string{
		"0":       "0",
		"1":       "1",
		"1.2":     "1.2",
		"1,2":     "1.2",
		" 12.34 ": "12.34",
		"1000":    "1000",
	}
	for in, want := range ok {
		got, err := ParseAmount(in)
		require.NoError(t, err, "input %q", in)
		require.True(t, got.Valid, "input %q", in)
		assert.True(t, got.Decimal.Equal(decimal.RequireFromString(want)), "input %q got %s", in, got.Decimal)
	}

	for _, in := range []string{"", "   "} {
		got, err := ParseAmount(in)
		require.NoError(t, err)
		assert.False(t, got.Valid)
	}

	for _, in := range []string{"-1", "+1", "abc", "1.2.3", "1e3", ".", "1 000"} {
		_, err := ParseAmount(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", in)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "", FormatAmount(decimal.NullDecimal{}))
	assert.Equal(t, "0.00", FormatAmount(amt("0")))
	assert.Equal(t, "12.50", FormatAmount(amt("12.5")))
	assert.Equal(t, "10.00 EUR", FormatMoney(decimal.NewFromInt(10), "EUR"))
	assert.Equal(t, "10.00", FormatMoney(decimal.NewFromInt(10), " "))
}
