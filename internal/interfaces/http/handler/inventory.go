package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	appinventory "github.com/storefront/backend/internal/application/inventory"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/shared"
)

// InventoryHandler serves stock lookups and counter adjustments
type InventoryHandler struct {
	BaseHandler
	ledger *appinventory.StockLedger
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(ledger *appinventory.StockLedger) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

// GetItem returns the counters of one item
// GET /inventory/:sku
func (h *InventoryHandler) GetItem(c *gin.Context) {
	item, err := h.ledger.GetItem(c.Request.Context(), c.Param("sku"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Availability reports whether the item may be sold at all
// GET /inventory/:sku/availability
func (h *InventoryHandler) Availability(c *gin.Context) {
	sku := inventory.NormalizeSKU(c.Param("sku"))
	ok, err := h.ledger.IsAvailable(c.Request.Context(), sku)
	h.answer(c, AvailabilityResponse{SKU: sku, Available: ok}, err)
}

// Stock reports whether the requested quantity can be bought now
// GET /inventory/:sku/stock?quantity=N
func (h *InventoryHandler) Stock(c *gin.Context) {
	var q StockQuery
	if !h.bindQuery(c, &q) {
		return
	}
	sku := inventory.NormalizeSKU(c.Param("sku"))
	ok, err := h.ledger.IsInStock(c.Request.Context(), sku, q.Quantity)
	h.answer(c, AvailabilityResponse{SKU: sku, Available: ok, Quantity: q.Quantity}, err)
}

// answer turns a negative check into available=false with the reason code.
// Missing items and infrastructure failures stay errors.
func (h *InventoryHandler) answer(c *gin.Context, resp AvailabilityResponse, err error) {
	if err != nil {
		var de *shared.DomainError
		if !errors.As(err, &de) || de.Kind == shared.KindNotFound || de.Kind == shared.KindValidation {
			h.HandleError(c, err)
			return
		}
		resp.Available = false
		resp.Reason = de.Code
	}
	h.Success(c, resp)
}

// Adjust increments or decrements one counter
// POST /inventory/:sku/adjustments
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	sku := inventory.NormalizeSKU(c.Param("sku"))
	dir := inventory.Direction(req.Direction)

	var (
		value int
		err   error
	)
	if inventory.Counter(req.Counter) == inventory.CounterActual {
		value, err = h.ledger.AdjustActual(c.Request.Context(), sku, req.Quantity, dir)
	} else {
		value, err = h.ledger.AdjustAvailable(c.Request.Context(), sku, req.Quantity, dir)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, AdjustStockResponse{SKU: sku, Counter: req.Counter, Value: value})
}

// UpdateStatus switches whether an item is active or suppliable
// PATCH /inventory/:sku/status
func (h *InventoryHandler) UpdateStatus(c *gin.Context) {
	var req ItemStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.ledger.UpdateItemStatus(c.Request.Context(), c.Param("sku"), appinventory.ItemStatusChange{
		Active:     req.Active,
		Suppliable: req.Suppliable,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// UpdateProductStatus activates or deactivates a product together with its items
// PATCH /products/:sku/status
func (h *InventoryHandler) UpdateProductStatus(c *gin.Context) {
	var req ProductStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.ledger.SetProductActive(c.Request.Context(), c.Param("sku"), *req.Active)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
