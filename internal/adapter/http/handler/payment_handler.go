package handler

import (
	"errors"
	"net/http"

	"payment-engine/internal/adapter/http/dto"
	"payment-engine/internal/core/domain"
	"payment-engine/internal/core/ports"
	"payment-engine/pkg/apperror"
	"payment-engine/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// PaymentHandler handles payment-related endpoints.
type PaymentHandler struct {
	processor ports.PaymentProcessor
	log       zerolog.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(processor ports.PaymentProcessor, log zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{processor: processor, log: log}
}

// Pay handles POST /pay.
func (h *PaymentHandler) Pay(c *gin.Context) {
	var req dto.PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, apperror.ErrPayloadTooLarge())
			return
		}
		h.log.Debug().Err(err).Msg("pay: request did not bind")
		response.Rejected(c, apperror.ErrInvalidInput("Invalid input type"), req.Balance())
		return
	}

	result, err := h.processor.Process(c.Request.Context(), req.ToDomain())
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}

	if result.Accepted {
		response.Paid(c, result.Message, string(result.Reason), result.NewBalance)
		return
	}

	if result.Reason.Retryable() {
		c.Header("Retry-After", "1")
	}
	appErr := apperror.Rejection(string(result.Reason), result.Message)
	if result.Reason == domain.ReasonContended {
		response.Rejected(c, appErr, nil)
		return
	}
	response.Rejected(c, appErr, &result.NewBalance)
}
