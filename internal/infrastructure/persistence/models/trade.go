package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
)

// CartModel is the persistence model for the Cart aggregate root.
type CartModel struct {
	AggregateModel
	UserID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Lines  []CartLineModel `gorm:"foreignKey:CartID;references:ID"`
}

// TableName returns the table name for GORM
func (CartModel) TableName() string {
	return "carts"
}

// ToDomain converts the persistence model to a domain Cart entity.
func (m *CartModel) ToDomain() *trade.Cart {
	cart := &trade.Cart{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		UserID:            m.UserID,
		Lines:             make([]trade.CartLine, len(m.Lines)),
	}
	for i, l := range m.Lines {
		cart.Lines[i] = l.ToDomain()
	}
	return cart
}

// FromDomain populates the persistence model from a domain Cart entity.
func (m *CartModel) FromDomain(c *trade.Cart) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.UserID = c.UserID
	m.Lines = make([]CartLineModel, len(c.Lines))
	for i := range c.Lines {
		m.Lines[i] = CartLineModelFromDomain(&c.Lines[i])
	}
}

// CartModelFromDomain creates a new persistence model from a domain Cart entity.
func CartModelFromDomain(c *trade.Cart) *CartModel {
	m := &CartModel{}
	m.FromDomain(c)
	return m
}

// CartLineModel is the persistence model for a cart line. The unique
// (cart_id, item_id) index backs the one-line-per-item rule.
type CartLineModel struct {
	BaseModel
	CartID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_line_item,priority:1"`
	ItemID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_line_item,priority:2"`
	SKU      string    `gorm:"type:varchar(50);not null"`
	Quantity int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CartLineModel) TableName() string {
	return "cart_lines"
}

// ToDomain converts the persistence model to a domain CartLine.
func (m *CartLineModel) ToDomain() trade.CartLine {
	return trade.CartLine{
		ID:        m.ID,
		CartID:    m.CartID,
		ItemID:    m.ItemID,
		SKU:       m.SKU,
		Quantity:  m.Quantity,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// CartLineModelFromDomain creates a persistence model from a domain CartLine.
func CartLineModelFromDomain(l *trade.CartLine) CartLineModel {
	return CartLineModel{
		BaseModel: BaseModel{ID: l.ID, CreatedAt: l.CreatedAt, UpdatedAt: l.UpdatedAt},
		CartID:    l.CartID,
		ItemID:    l.ItemID,
		SKU:       l.SKU,
		Quantity:  l.Quantity,
	}
}

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	UserID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	TransactionRef string           `gorm:"type:varchar(100);not null;uniqueIndex"`
	Status         string           `gorm:"type:varchar(20);not null;default:'waiting';index"`
	Footnote       string           `gorm:"type:text"`
	AddressID      uuid.UUID        `gorm:"type:uuid;not null"`
	VoucherID      *uuid.UUID       `gorm:"type:uuid"`
	LogisticID     *uuid.UUID       `gorm:"type:uuid"`
	PaidAt         *time.Time       `gorm:""`
	CancelledAt    *time.Time       `gorm:""`
	CancelReason   string           `gorm:"type:varchar(500)"`
	Lines          []OrderLineModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *trade.Order {
	order := &trade.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		UserID:            m.UserID,
		TransactionRef:    m.TransactionRef,
		Status:            trade.OrderStatus(m.Status),
		Footnote:          m.Footnote,
		AddressID:         m.AddressID,
		VoucherID:         m.VoucherID,
		LogisticID:        m.LogisticID,
		PaidAt:            m.PaidAt,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
		Lines:             make([]trade.OrderLine, len(m.Lines)),
	}
	for i, l := range m.Lines {
		order.Lines[i] = l.ToDomain()
	}
	return order
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.UserID = o.UserID
	m.TransactionRef = o.TransactionRef
	m.Status = string(o.Status)
	m.Footnote = o.Footnote
	m.AddressID = o.AddressID
	m.VoucherID = o.VoucherID
	m.LogisticID = o.LogisticID
	m.PaidAt = o.PaidAt
	m.CancelledAt = o.CancelledAt
	m.CancelReason = o.CancelReason
	m.Lines = make([]OrderLineModel, len(o.Lines))
	for i := range o.Lines {
		m.Lines[i] = OrderLineModelFromDomain(&o.Lines[i])
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order entity.
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderLineModel is the persistence model for an order line snapshot.
type OrderLineModel struct {
	ID                      uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID                 uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID                  uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU                     string          `gorm:"type:varchar(50);not null"`
	Quantity                int             `gorm:"not null"`
	UnitCost                decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UnitCostWithoutDiscount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	VoucherID               *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt               time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderLineModel) TableName() string {
	return "order_lines"
}

// ToDomain converts the persistence model to a domain OrderLine.
func (m *OrderLineModel) ToDomain() trade.OrderLine {
	return trade.OrderLine{
		ID:                      m.ID,
		OrderID:                 m.OrderID,
		ItemID:                  m.ItemID,
		SKU:                     m.SKU,
		Quantity:                m.Quantity,
		UnitCost:                m.UnitCost,
		UnitCostWithoutDiscount: m.UnitCostWithoutDiscount,
		VoucherID:               m.VoucherID,
		CreatedAt:               m.CreatedAt,
	}
}

// OrderLineModelFromDomain creates a persistence model from a domain OrderLine.
func OrderLineModelFromDomain(l *trade.OrderLine) OrderLineModel {
	return OrderLineModel{
		ID:                      l.ID,
		OrderID:                 l.OrderID,
		ItemID:                  l.ItemID,
		SKU:                     l.SKU,
		Quantity:                l.Quantity,
		UnitCost:                l.UnitCost,
		UnitCostWithoutDiscount: l.UnitCostWithoutDiscount,
		VoucherID:               l.VoucherID,
		CreatedAt:               l.CreatedAt,
	}
}

// RefundModel is the persistence model for a refund record. At most one
// refund exists per order line.
type RefundModel struct {
	BaseModel
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderLineID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	ItemID      uuid.UUID `gorm:"type:uuid;not null"`
	SKU         string    `gorm:"type:varchar(50);not null"`
	Quantity    int       `gorm:"not null"`
	Reason      string    `gorm:"type:varchar(500);not null"`
}

// TableName returns the table name for GORM
func (RefundModel) TableName() string {
	return "refunds"
}

// ToDomain converts the persistence model to a domain Refund entity.
func (m *RefundModel) ToDomain() *trade.Refund {
	return &trade.Refund{
		BaseEntity:  m.BaseModel.ToDomain(),
		OrderID:     m.OrderID,
		OrderLineID: m.OrderLineID,
		ItemID:      m.ItemID,
		SKU:         m.SKU,
		Quantity:    m.Quantity,
		Reason:      m.Reason,
	}
}

// RefundModelFromDomain creates a persistence model from a domain Refund entity.
func RefundModelFromDomain(r *trade.Refund) *RefundModel {
	m := &RefundModel{
		OrderID:     r.OrderID,
		OrderLineID: r.OrderLineID,
		ItemID:      r.ItemID,
		SKU:         r.SKU,
		Quantity:    r.Quantity,
		Reason:      r.Reason,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

// AddressModel is the persistence model for a shipping address.
type AddressModel struct {
	BaseModel
	UserID        uuid.UUID `gorm:"type:uuid;not null;index"`
	ReceiverName  string    `gorm:"type:varchar(100);not null"`
	Phone         string    `gorm:"type:varchar(30)"`
	PostalAddress string    `gorm:"type:text;not null"`
	PostalCode    string    `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (AddressModel) TableName() string {
	return "addresses"
}

// ToDomain converts the persistence model to a domain Address entity.
func (m *AddressModel) ToDomain() *trade.Address {
	return &trade.Address{
		BaseEntity:    m.BaseModel.ToDomain(),
		UserID:        m.UserID,
		ReceiverName:  m.ReceiverName,
		Phone:         m.Phone,
		PostalAddress: m.PostalAddress,
		PostalCode:    m.PostalCode,
	}
}

// AddressModelFromDomain creates a persistence model from a domain Address entity.
func AddressModelFromDomain(a *trade.Address) *AddressModel {
	m := &AddressModel{
		UserID:        a.UserID,
		ReceiverName:  a.ReceiverName,
		Phone:         a.Phone,
		PostalAddress: a.PostalAddress,
		PostalCode:    a.PostalCode,
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m
}

// VoucherModel is the persistence model for a discount voucher.
type VoucherModel struct {
	BaseModel
	Code            string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	IsActive        bool            `gorm:"not null;default:true"`
	ValidUntil      *time.Time      `gorm:""`
}

// TableName returns the table name for GORM
func (VoucherModel) TableName() string {
	return "vouchers"
}

// ToDomain converts the persistence model to a domain Voucher entity.
func (m *VoucherModel) ToDomain() *trade.Voucher {
	return &trade.Voucher{
		BaseEntity:      shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		Code:            m.Code,
		DiscountPercent: m.DiscountPercent,
		IsActive:        m.IsActive,
		ValidUntil:      m.ValidUntil,
	}
}

// VoucherModelFromDomain creates a persistence model from a domain Voucher entity.
func VoucherModelFromDomain(v *trade.Voucher) *VoucherModel {
	m := &VoucherModel{
		Code:            v.Code,
		DiscountPercent: v.DiscountPercent,
		IsActive:        v.IsActive,
		ValidUntil:      v.ValidUntil,
	}
	m.FromDomainBaseEntity(v.BaseEntity)
	return m
}

// AllModels lists every persistence model, used by test schemas
func AllModels() []interface{} {
	return []interface{}{
		&CategoryModel{},
		&ProductModel{},
		&InventoryItemModel{},
		&CartModel{},
		&CartLineModel{},
		&OrderModel{},
		&OrderLineModel{},
		&RefundModel{},
		&AddressModel{},
		&VoucherModel{},
	}
}
