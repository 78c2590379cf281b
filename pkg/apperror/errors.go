package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// Error codes. Payment codes match domain.ReasonCode values so a rejected
// result can be turned into an AppError without a lookup table in callers.
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeInsufficientFunds  = "INSUFFICIENT_FUNDS"
	CodeFraudSuspected     = "FRAUD_SUSPECTED"
	CodeGatewayDeclined    = "GATEWAY_DECLINED"
	CodeContended          = "CONTENDED"
	CodeGatewayUnavailable = "GATEWAY_UNAVAILABLE"
	CodeRateLimited        = "RATE_LIMITED"
	CodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	CodeInternal           = "INTERNAL"
)

var statusByCode = map[string]int{
	CodeInvalidInput:       http.StatusBadRequest,
	CodeInsufficientFunds:  http.StatusBadRequest,
	CodeFraudSuspected:     http.StatusBadRequest,
	CodeGatewayDeclined:    http.StatusBadRequest,
	CodeContended:          http.StatusTooManyRequests,
	CodeGatewayUnavailable: http.StatusServiceUnavailable,
	CodeRateLimited:        http.StatusTooManyRequests,
	CodePayloadTooLarge:    http.StatusRequestEntityTooLarge,
	CodeInternal:           http.StatusInternalServerError,
}

// ---- Payment rejections ----

func ErrInvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message, http.StatusBadRequest)
}

func ErrInsufficientFunds() *AppError {
	return New(CodeInsufficientFunds, "Insufficient funds", http.StatusBadRequest)
}

func ErrFraudSuspected() *AppError {
	return New(CodeFraudSuspected, "Transaction flagged as fraudulent", http.StatusBadRequest)
}

// ErrGatewayDeclined carries the gateway's own decline message.
func ErrGatewayDeclined(gatewayMessage string) *AppError {
	return New(CodeGatewayDeclined, "Gateway error: "+gatewayMessage, http.StatusBadRequest)
}

// ---- Retryable ----

func ErrAccountContended() *AppError {
	return New(CodeContended, "Another transaction in progress for this account", http.StatusTooManyRequests)
}

func ErrGatewayUnavailable(err error) *AppError {
	msg := "Payment gateway failure"
	if err != nil {
		msg += ": " + err.Error()
	}
	return Wrap(CodeGatewayUnavailable, msg, http.StatusServiceUnavailable, err)
}

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimited, "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System ----

func ErrPayloadTooLarge() *AppError {
	return New(CodePayloadTooLarge, "Request body too large", http.StatusRequestEntityTooLarge)
}

// InternalError wraps an internal error as a 500.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}

// Rejection rebuilds an AppError from a rejection code and message.
// Unknown codes map to 400.
func Rejection(code string, message string) *AppError {
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusBadRequest
	}
	return New(code, message, status)
}
