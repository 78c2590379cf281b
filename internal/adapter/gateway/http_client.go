package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"payment-engine/internal/core/domain"
)

// maxResponseBytes caps how much of a gateway response is read.
const maxResponseBytes = 64 << 10

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type chargeRequest struct {
	Amount    json.Number `json:"amount"`
	Currency  string      `json:"currency"`
	AccountID string      `json:"accountId"`
}

type chargeResponse struct {
	Success *bool  `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HTTPClient implements ports.GatewayClient against a remote gateway exposing
// POST <baseURL>/charges.
type HTTPClient struct {
	baseURL string
	client  Doer
}

// NewHTTPClient creates a gateway client. A nil doer gets an *http.Client
// with the given timeout.
func NewHTTPClient(baseURL string, timeout time.Duration, doer Doer) *HTTPClient {
	if doer == nil {
		doer = &http.Client{Timeout: timeout}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  doer,
	}
}

// Charge posts the charge and decodes the gateway verdict. Transport errors,
// non-2xx statuses and bodies without a success flag are returned as errors.
func (c *HTTPClient) Charge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error) {
	body, err := json.Marshal(chargeRequest{
		Amount:    json.Number(req.Amount.String()),
		Currency:  req.Currency.String(),
		AccountID: req.AccountID,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding charge: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/charges", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building charge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("posting charge: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway responded with status %d", resp.StatusCode)
	}

	var out chargeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedGatewayResponse, err)
	}
	if out.Success == nil {
		return nil, domain.ErrMalformedGatewayResponse
	}

	result := &domain.ChargeResult{
		Approved: *out.Success,
		Code:     out.Code,
		Message:  out.Message,
	}
	if result.Code == "" {
		if result.Approved {
			result.Code = domain.GatewayCodeApproved
		} else {
			result.Code = domain.GatewayCodeDeclined
		}
	}
	return result, nil
}
