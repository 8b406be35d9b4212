package trade

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCreated       = "OrderCreated"
	EventTypeOrderPaid          = "OrderPaid"
	EventTypeOrderCancelled     = "OrderCancelled"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
	EventTypeOrderLineRefunded  = "OrderLineRefunded"
)

// OrderLineSnapshot is the event payload form of an order line
type OrderLineSnapshot struct {
	LineID   uuid.UUID       `json:"line_id"`
	ItemID   uuid.UUID       `json:"item_id"`
	SKU      string          `json:"sku"`
	Quantity int             `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

func snapshotLines(o *Order) []OrderLineSnapshot {
	lines := make([]OrderLineSnapshot, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = OrderLineSnapshot{
			LineID:   l.ID,
			ItemID:   l.ItemID,
			SKU:      l.SKU,
			Quantity: l.Quantity,
			UnitCost: l.UnitCost,
		}
	}
	return lines
}

// OrderCreatedEvent is raised when a cart is turned into a waiting order
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID           `json:"order_id"`
	UserID         uuid.UUID           `json:"user_id"`
	TransactionRef string              `json:"transaction_ref"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	Lines          []OrderLineSnapshot `json:"lines"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		UserID:          o.UserID,
		TransactionRef:  o.TransactionRef,
		TotalAmount:     o.TotalAmount(),
		Lines:           snapshotLines(o),
	}
}

// OrderPaidEvent is raised when payment is confirmed and stock consumed
type OrderPaidEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID           `json:"order_id"`
	UserID         uuid.UUID           `json:"user_id"`
	TransactionRef string              `json:"transaction_ref"`
	Lines          []OrderLineSnapshot `json:"lines"`
}

// NewOrderPaidEvent creates a new OrderPaidEvent
func NewOrderPaidEvent(o *Order) *OrderPaidEvent {
	return &OrderPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaid, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		UserID:          o.UserID,
		TransactionRef:  o.TransactionRef,
		Lines:           snapshotLines(o),
	}
}

// OrderCancelledEvent is raised when an order is cancelled
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID `json:"order_id"`
	TransactionRef string    `json:"transaction_ref"`
	Reason         string    `json:"reason"`
	WasPaid        bool      `json:"was_paid"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(o *Order, wasPaid bool) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		TransactionRef:  o.TransactionRef,
		Reason:          o.CancelReason,
		WasPaid:         wasPaid,
	}
}

// OrderStatusChangedEvent is raised on fulfillment transitions
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID   `json:"order_id"`
	From    OrderStatus `json:"from"`
	To      OrderStatus `json:"to"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, from OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		From:            from,
		To:              o.Status,
	}
}

// OrderLineRefundedEvent is raised when a line is refunded
type OrderLineRefundedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderLineID uuid.UUID `json:"order_line_id"`
	RefundID    uuid.UUID `json:"refund_id"`
	SKU         string    `json:"sku"`
	Quantity    int       `json:"quantity"`
	Reason      string    `json:"reason"`
}

// NewOrderLineRefundedEvent creates a new OrderLineRefundedEvent
func NewOrderLineRefundedEvent(o *Order, r *Refund) *OrderLineRefundedEvent {
	return &OrderLineRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderLineRefunded, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderLineID:     r.OrderLineID,
		RefundID:        r.ID,
		SKU:             r.SKU,
		Quantity:        r.Quantity,
		Reason:          r.Reason,
	}
}
