package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/inventory"
)

// InventoryItemResponse is the read model of an inventory item
type InventoryItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	SKU            string          `json:"sku"`
	ProductID      uuid.UUID       `json:"product_id"`
	Price          decimal.Decimal `json:"price"`
	AvailableStock int             `json:"available_stock"`
	ActualStock    int             `json:"actual_stock"`
	IsActive       bool            `json:"is_active"`
	IsSuppliable   bool            `json:"is_suppliable"`
	Version        int             `json:"version"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToInventoryItemResponse converts the domain item to its read model
func ToInventoryItemResponse(item *inventory.InventoryItem) InventoryItemResponse {
	return InventoryItemResponse{
		ID:             item.ID,
		SKU:            item.SKU,
		ProductID:      item.ProductID,
		Price:          item.Price,
		AvailableStock: item.AvailableStock,
		ActualStock:    item.ActualStock,
		IsActive:       item.IsActive,
		IsSuppliable:   item.IsSuppliable,
		Version:        item.Version,
		UpdatedAt:      item.UpdatedAt,
	}
}

// ItemStatusChange selects the item flags to set; nil fields are left alone
type ItemStatusChange struct {
	Active     *bool
	Suppliable *bool
}

// ProductStatusResponse reports a product status change and the items it
// was applied to
type ProductStatusResponse struct {
	SKU      string                  `json:"sku"`
	IsActive bool                    `json:"is_active"`
	Items    []InventoryItemResponse `json:"items"`
}

// Adjustment describes one change to one stock counter
type Adjustment struct {
	SKU       string
	Counter   inventory.Counter
	Quantity  int
	Direction inventory.Direction
}

// AdjustmentResult is the outcome of a committed adjustment
type AdjustmentResult struct {
	Item  *inventory.InventoryItem
	Value int
}
