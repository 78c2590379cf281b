package domain

// Currency is an ISO 4217 code. Codes are case-sensitive.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"

	// ReferenceCurrency is the unit all thresholds are expressed in.
	ReferenceCurrency = CurrencyUSD
)

func (c Currency) String() string {
	return string(c)
}
