package handler

import (
	"payment-engine/internal/adapter/http/dto"
	"payment-engine/internal/core/ports"
	"payment-engine/pkg/response"

	"github.com/gin-gonic/gin"
)

// AccountHandler exposes read-only account views.
type AccountHandler struct {
	processor ports.PaymentProcessor
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(processor ports.PaymentProcessor) *AccountHandler {
	return &AccountHandler{processor: processor}
}

// Risk handles GET /api/v1/accounts/:id/risk.
func (h *AccountHandler) Risk(c *gin.Context) {
	snap, err := h.processor.Risk(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewRiskResponse(snap))
}
