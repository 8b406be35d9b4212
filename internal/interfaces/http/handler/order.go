package handler

import (
	"github.com/gin-gonic/gin"
	apptrade "github.com/storefront/backend/internal/application/trade"
)

// OrderHandler serves order reads and refunds
type OrderHandler struct {
	BaseHandler
	orders  *apptrade.OrderQueryService
	refunds *apptrade.RefundService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders *apptrade.OrderQueryService, refunds *apptrade.RefundService) *OrderHandler {
	return &OrderHandler{orders: orders, refunds: refunds}
}

// GetOrder returns an order with its lines
// GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Lookup finds an order by its payment reference
// GET /orders?transaction_ref=...
func (h *OrderHandler) Lookup(c *gin.Context) {
	var q OrderLookupQuery
	if !h.bindQuery(c, &q) {
		return
	}
	order, err := h.orders.GetOrderByTransactionRef(c.Request.Context(), q.TransactionRef)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// ListByUser returns every order of a user, newest first
// GET /users/:id/orders
func (h *OrderHandler) ListByUser(c *gin.Context) {
	userID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	orders, err := h.orders.ListOrdersByUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// CountByStatus returns how many orders a user has in each status
// GET /users/:id/orders/counts
func (h *OrderHandler) CountByStatus(c *gin.Context) {
	userID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	counts, err := h.orders.CountOrdersByStatus(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, counts)
}

// ListRefunds returns the refunds recorded for an order
// GET /orders/:id/refunds
func (h *OrderHandler) ListRefunds(c *gin.Context) {
	orderID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	refunds, err := h.orders.ListRefunds(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, refunds)
}

// RefundLine refunds one line of a paid order and restocks it
// POST /order-lines/:id/refund
func (h *OrderHandler) RefundLine(c *gin.Context) {
	lineID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req RefundRequest
	if !h.bindJSON(c, &req) {
		return
	}
	refund, err := h.refunds.RefundLine(c.Request.Context(), lineID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, refund)
}

// RefundOrder refunds every line not yet refunded, all or nothing
// POST /orders/:id/refund
func (h *OrderHandler) RefundOrder(c *gin.Context) {
	orderID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req RefundRequest
	if !h.bindJSON(c, &req) {
		return
	}
	refunds, err := h.refunds.RefundOrder(c.Request.Context(), orderID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, refunds)
}
