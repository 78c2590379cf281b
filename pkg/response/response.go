package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"payment-engine/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CtxRequestID is the gin context key holding the request ID.
const CtxRequestID = "request_id"

// Envelope is the response body shared by every endpoint.
// NewBalance is emitted as a JSON number with the exact decimal digits.
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	NewBalance json.Number `json:"newBalance,omitempty"`
	ReasonCode string      `json:"reasonCode,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	RequestID  string      `json:"requestId"`
	Timestamp  string      `json:"timestamp"`
}

// OK sends a 200 response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{
		Success:   true,
		Data:      data,
		RequestID: getRequestID(c),
		Timestamp: now(),
	})
}

// Paid sends the 200 body of an accepted payment.
func Paid(c *gin.Context, message, reasonCode string, newBalance decimal.Decimal) {
	c.JSON(http.StatusOK, Envelope{
		Success:    true,
		Message:    message,
		NewBalance: json.Number(newBalance.String()),
		ReasonCode: reasonCode,
		RequestID:  getRequestID(c),
		Timestamp:  now(),
	})
}

// Rejected sends a failed payment. balance is echoed back unchanged when
// non-nil; contention responses pass nil and omit it.
func Rejected(c *gin.Context, appErr *apperror.AppError, balance *decimal.Decimal) {
	env := Envelope{
		Success:    false,
		Message:    appErr.Message,
		ReasonCode: appErr.Code,
		RequestID:  getRequestID(c),
		Timestamp:  now(),
	}
	if balance != nil {
		env.NewBalance = json.Number(balance.String())
	}
	c.JSON(appErr.HTTPStatus, env)
}

// Error sends an error response. It checks if err is an *apperror.AppError
// and maps it accordingly, otherwise returns 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		Rejected(c, appErr, nil)
		return
	}
	Rejected(c, apperror.InternalError(err), nil)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// getRequestID retrieves request ID from context, or generates one.
func getRequestID(c *gin.Context) string {
	if id, exists := c.Get(CtxRequestID); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return uuid.New().String()
}
