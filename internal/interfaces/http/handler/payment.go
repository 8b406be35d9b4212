package handler

import (
	"github.com/gin-gonic/gin"
	apptrade "github.com/storefront/backend/internal/application/trade"
	"github.com/storefront/backend/internal/domain/trade"
)

// PaymentHandler receives gateway callbacks and fulfillment updates
type PaymentHandler struct {
	BaseHandler
	payments *apptrade.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments *apptrade.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Callback applies a gateway outcome to the order with the given reference.
// Gateways retry until they get a 2xx, so replays of an already applied
// outcome answer 200 with the current order.
// POST /payments/callback
func (h *PaymentHandler) Callback(c *gin.Context) {
	var req PaymentCallbackRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.payments.ConfirmPayment(c.Request.Context(), req.TransactionRef, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// AdvanceStatus moves a paid order through shipping and delivery
// PATCH /orders/:id/status
func (h *PaymentHandler) AdvanceStatus(c *gin.Context) {
	orderID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req AdvanceStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.payments.AdvanceFulfillment(c.Request.Context(), orderID, trade.OrderStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
