package service

import (
	"testing"

	"payment-engine/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedRateConverter_ToReference(t *testing.T) {
	conv := NewFixedRateConverter(DefaultRates())

	tests := []struct {
		name     string
		amount   string
		currency domain.Currency
		want     string
	}{
		{"usd is identity", "100", domain.CurrencyUSD, "100"},
		{"eur", "100", domain.CurrencyEUR, "110"},
		{"gbp", "100", domain.CurrencyGBP, "130"},
		{"eur fractional", "4545.46", domain.CurrencyEUR, "5000.006"},
		{"tiny amount", "0.01", domain.CurrencyGBP, "0.013"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := conv.ToReference(decimal.RequireFromString(tc.amount), tc.currency)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tc.want).Equal(got), "got %s", got)
		})
	}
}

func TestFixedRateConverter_Unsupported(t *testing.T) {
	conv := NewFixedRateConverter(DefaultRates())

	for _, cur := range []domain.Currency{"JPY", "usd", "", "US D"} {
		assert.False(t, conv.Supports(cur), "currency %q", cur)
		_, err := conv.ToReference(decimal.NewFromInt(1), cur)
		assert.ErrorIs(t, err, ErrUnsupportedCurrency)
	}
}

func TestFixedRateConverter_Supports(t *testing.T) {
	conv := NewFixedRateConverter(DefaultRates())
	assert.True(t, conv.Supports(domain.CurrencyUSD))
	assert.True(t, conv.Supports(domain.CurrencyEUR))
	assert.True(t, conv.Supports(domain.CurrencyGBP))
}

func TestNewFixedRateConverter_DropsNonPositiveRates(t *testing.T) {
	rates := DefaultRates()
	rates["JPY"] = decimal.Zero
	rates["CHF"] = decimal.NewFromInt(-1)

	conv := NewFixedRateConverter(rates)
	assert.False(t, conv.Supports("JPY"))
	assert.False(t, conv.Supports("CHF"))

	// later edits to the source map do not leak in
	rates["AUD"] = decimal.NewFromInt(2)
	assert.False(t, conv.Supports("AUD"))
}
