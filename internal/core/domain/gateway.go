package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Gateway response codes.
const (
	GatewayCodeApproved = "APPROVED"
	GatewayCodeDeclined = "DECLINED"
)

// ErrMalformedGatewayResponse is returned when the gateway answers with a
// body that is neither an approval nor a structurally valid decline.
var ErrMalformedGatewayResponse = errors.New("malformed gateway response")

// ChargeRequest is sent to the charge-authorization gateway.
type ChargeRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Currency  Currency        `json:"currency"`
	AccountID string          `json:"account_id"`
}

// ChargeResult is a structurally valid gateway response.
type ChargeResult struct {
	Approved bool   `json:"approved"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}
