package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/inventory"
)

// InventoryItemModel is the persistence model for the InventoryItem aggregate root.
// The database enforces actual_stock >= available_stock >= 0 with a check constraint.
type InventoryItemModel struct {
	AggregateModel
	SKU            string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Price          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	AvailableStock int             `gorm:"not null;default:0"`
	ActualStock    int             `gorm:"not null;default:0"`
	IsActive       bool            `gorm:"not null;default:true"`
	IsSuppliable   bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (InventoryItemModel) TableName() string {
	return "inventory_items"
}

// ToDomain converts the persistence model to a domain InventoryItem entity.
func (m *InventoryItemModel) ToDomain() *inventory.InventoryItem {
	return &inventory.InventoryItem{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		SKU:               m.SKU,
		ProductID:         m.ProductID,
		Price:             m.Price,
		AvailableStock:    m.AvailableStock,
		ActualStock:       m.ActualStock,
		IsActive:          m.IsActive,
		IsSuppliable:      m.IsSuppliable,
	}
}

// FromDomain populates the persistence model from a domain InventoryItem entity.
func (m *InventoryItemModel) FromDomain(i *inventory.InventoryItem) {
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	m.SKU = i.SKU
	m.ProductID = i.ProductID
	m.Price = i.Price
	m.AvailableStock = i.AvailableStock
	m.ActualStock = i.ActualStock
	m.IsActive = i.IsActive
	m.IsSuppliable = i.IsSuppliable
}

// InventoryItemModelFromDomain creates a new persistence model from a domain InventoryItem entity.
func InventoryItemModelFromDomain(i *inventory.InventoryItem) *InventoryItemModel {
	m := &InventoryItemModel{}
	m.FromDomain(i)
	return m
}
