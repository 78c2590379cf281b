package service

import (
	"errors"
	"fmt"

	"payment-engine/internal/core/domain"

	"github.com/shopspring/decimal"
)

// ErrUnsupportedCurrency is returned for currencies outside the rate table.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// DefaultRates returns the fixed conversion table to the reference currency.
func DefaultRates() map[domain.Currency]decimal.Decimal {
	return map[domain.Currency]decimal.Decimal{
		domain.CurrencyUSD: decimal.NewFromInt(1),
		domain.CurrencyEUR: decimal.RequireFromString("1.1"),
		domain.CurrencyGBP: decimal.RequireFromString("1.3"),
	}
}

// FixedRateConverter implements ports.CurrencyConverter over an immutable rate table.
type FixedRateConverter struct {
	rates map[domain.Currency]decimal.Decimal
}

// NewFixedRateConverter copies rates; non-positive rates are dropped.
func NewFixedRateConverter(rates map[domain.Currency]decimal.Decimal) *FixedRateConverter {
	table := make(map[domain.Currency]decimal.Decimal, len(rates))
	for cur, rate := range rates {
		if rate.IsPositive() {
			table[cur] = rate
		}
	}
	return &FixedRateConverter{rates: table}
}

// Supports reports whether currency has a rate.
func (c *FixedRateConverter) Supports(currency domain.Currency) bool {
	_, ok := c.rates[currency]
	return ok
}

// ToReference converts amount into the reference currency.
func (c *FixedRateConverter) ToReference(amount decimal.Decimal, currency domain.Currency) (decimal.Decimal, error) {
	rate, ok := c.rates[currency]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, currency)
	}
	return amount.Mul(rate), nil
}
