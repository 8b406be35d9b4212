package inventory

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeInventoryItem = "InventoryItem"

// Event type constants
const (
	EventTypeStockAdjusted = "StockAdjusted"
	EventTypeStockDepleted = "StockDepleted"
)

// StockAdjustedEvent is raised on every committed counter change
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	InventoryItemID uuid.UUID `json:"inventory_item_id"`
	SKU             string    `json:"sku"`
	Counter         Counter   `json:"counter"`
	Direction       Direction `json:"direction"`
	Quantity        int       `json:"quantity"`
	Before          int       `json:"before"`
	After           int       `json:"after"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent
func NewStockAdjustedEvent(item *InventoryItem, counter Counter, dir Direction, quantity, before, after int) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, AggregateTypeInventoryItem, item.ID),
		InventoryItemID: item.ID,
		SKU:             item.SKU,
		Counter:         counter,
		Direction:       dir,
		Quantity:        quantity,
		Before:          before,
		After:           after,
	}
}

// StockDepletedEvent is the low-stock signal raised when a counter reaches zero
type StockDepletedEvent struct {
	shared.BaseDomainEvent
	InventoryItemID uuid.UUID `json:"inventory_item_id"`
	SKU             string    `json:"sku"`
	Counter         Counter   `json:"counter"`
}

// NewStockDepletedEvent creates a new StockDepletedEvent
func NewStockDepletedEvent(item *InventoryItem, counter Counter) *StockDepletedEvent {
	return &StockDepletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockDepleted, AggregateTypeInventoryItem, item.ID),
		InventoryItemID: item.ID,
		SKU:             item.SKU,
		Counter:         counter,
	}
}
