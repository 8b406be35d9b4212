package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apptrade "github.com/storefront/backend/internal/application/trade"
)

// CartHandler serves cart editing and checkout
type CartHandler struct {
	BaseHandler
	carts    *apptrade.CartService
	checkout *apptrade.CheckoutService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts *apptrade.CartService, checkout *apptrade.CheckoutService) *CartHandler {
	return &CartHandler{carts: carts, checkout: checkout}
}

// GetCart returns a cart with its lines
// GET /carts/:id
func (h *CartHandler) GetCart(c *gin.Context) {
	cartID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	cart, err := h.carts.GetCart(c.Request.Context(), cartID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// GetUserCart returns the cart of a user, creating it on first access
// GET /users/:id/cart
func (h *CartHandler) GetUserCart(c *gin.Context) {
	userID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	cart, err := h.carts.GetOrCreateCartForUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// AddLine adds an item to the cart, merging with an existing line
// POST /carts/:id/lines
func (h *CartHandler) AddLine(c *gin.Context) {
	cartID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req AddLineRequest
	if !h.bindJSON(c, &req) {
		return
	}
	line, err := h.carts.AddToCart(c.Request.Context(), cartID, req.SKU, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, line)
}

// RemoveLine deletes the line holding sku
// DELETE /carts/:id/lines/:sku
func (h *CartHandler) RemoveLine(c *gin.Context) {
	cartID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.carts.RemoveFromCart(c.Request.Context(), cartID, c.Param("sku")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AdjustLine moves a line quantity by one unit. Decreasing a line of one
// unit removes it and answers 204.
// PATCH /carts/:id/lines/:lineId
func (h *CartHandler) AdjustLine(c *gin.Context) {
	cartID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.uuidParam(c, "lineId")
	if !ok {
		return
	}
	var req AdjustLineRequest
	if !h.bindJSON(c, &req) {
		return
	}
	line, err := h.carts.AdjustLineQuantity(c.Request.Context(), cartID, lineID, req.Increment)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if line == nil {
		h.NoContent(c)
		return
	}
	h.Success(c, line)
}

// SetQuantities overwrites several line quantities in one transaction
// PUT /carts/:id/lines
func (h *CartHandler) SetQuantities(c *gin.Context) {
	cartID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req SetQuantitiesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cart, err := h.carts.SetQuantities(c.Request.Context(), cartID, req.Quantities)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// Checkout turns the cart into an order awaiting payment
// POST /carts/:id/checkout
func (h *CartHandler) Checkout(c *gin.Context) {
	cartID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req CheckoutRequest
	if !h.bindJSON(c, &req) {
		return
	}

	// binding already checked the uuid format
	in := apptrade.CheckoutRequest{
		CartID:         cartID,
		AddressID:      uuid.MustParse(req.AddressID),
		Footnote:       req.Footnote,
		TransactionRef: req.TransactionRef,
		VoucherID:      optionalUUID(req.VoucherID),
		LogisticID:     optionalUUID(req.LogisticID),
	}
	order, err := h.checkout.Checkout(c.Request.Context(), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

func optionalUUID(s *string) *uuid.UUID {
	if s == nil || *s == "" {
		return nil
	}
	id := uuid.MustParse(*s)
	return &id
}
