package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// MaxTransactionRefLength bounds the gateway transaction reference
const MaxTransactionRefLength = 100

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	OrderStatusWaiting    OrderStatus = "waiting"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusExpiring   OrderStatus = "expiring"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusWaiting, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered,
		OrderStatusCompleted, OrderStatusExpiring, OrderStatusCancelled:
		return true
	}
	return false
}

// AllOrderStatuses returns every order status in lifecycle order
func AllOrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusWaiting, OrderStatusExpiring, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCompleted, OrderStatusCancelled,
	}
}

func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusWaiting:
		return target == OrderStatusProcessing || target == OrderStatusCancelled || target == OrderStatusExpiring
	case OrderStatusExpiring:
		return target == OrderStatusProcessing || target == OrderStatusCancelled
	case OrderStatusProcessing:
		return target == OrderStatusShipped || target == OrderStatusCompleted || target == OrderStatusCancelled
	case OrderStatusShipped:
		return target == OrderStatusDelivered || target == OrderStatusCancelled
	case OrderStatusDelivered:
		return target == OrderStatusCompleted || target == OrderStatusCancelled
	case OrderStatusCompleted:
		return target == OrderStatusCancelled
	case OrderStatusCancelled:
		return false
	}
	return false
}

// IsAwaitingPayment reports whether payment has not been confirmed yet
func (s OrderStatus) IsAwaitingPayment() bool {
	return s == OrderStatusWaiting || s == OrderStatusExpiring
}

// IsPaid reports whether payment was confirmed and stock consumed
func (s OrderStatus) IsPaid() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCompleted:
		return true
	}
	return false
}

// OrderLine is an immutable snapshot of a purchased item
type OrderLine struct {
	ID                      uuid.UUID
	OrderID                 uuid.UUID
	ItemID                  uuid.UUID
	SKU                     string
	Quantity                int
	UnitCost                decimal.Decimal
	UnitCostWithoutDiscount decimal.Decimal
	VoucherID               *uuid.UUID
	CreatedAt               time.Time
}

// Total is the discounted amount of the line
func (l OrderLine) Total() decimal.Decimal {
	return l.UnitCost.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is a placed purchase of cart contents awaiting or past payment
type Order struct {
	shared.BaseAggregateRoot
	UserID         uuid.UUID
	TransactionRef string
	Status         OrderStatus
	Footnote       string
	AddressID      uuid.UUID
	VoucherID      *uuid.UUID
	LogisticID     *uuid.UUID
	Lines          []OrderLine
	PaidAt         *time.Time
	CancelledAt    *time.Time
	CancelReason   string
}

// NewOrder creates a waiting order
func NewOrder(userID uuid.UUID, transactionRef string, addressID uuid.UUID, footnote string) (*Order, error) {
	transactionRef = strings.TrimSpace(transactionRef)
	if transactionRef == "" {
		return nil, shared.ErrInvalidTransactionRef
	}
	if len(transactionRef) > MaxTransactionRefLength {
		return nil, shared.ErrInvalidTransactionRef.WithMessage(
			fmt.Sprintf("Transaction reference cannot exceed %d characters", MaxTransactionRefLength))
	}
	if userID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("User ID cannot be empty")
	}
	if addressID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("Address ID cannot be empty")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		TransactionRef:    transactionRef,
		Status:            OrderStatusWaiting,
		Footnote:          strings.TrimSpace(footnote),
		AddressID:         addressID,
		Lines:             make([]OrderLine, 0),
	}
	return order, nil
}

// AddLine snapshots a purchased item. Only allowed while waiting.
func (o *Order) AddLine(itemID uuid.UUID, sku string, quantity int, unitCost, unitCostWithoutDiscount decimal.Decimal, voucherID *uuid.UUID) (*OrderLine, error) {
	if o.Status != OrderStatusWaiting {
		return nil, shared.ErrInvalidState.WithMessage("Cannot add lines to an order that is not waiting")
	}
	if quantity < 1 {
		return nil, shared.ErrInvalidQuantity
	}
	if unitCost.IsNegative() || unitCostWithoutDiscount.IsNegative() {
		return nil, shared.ErrInvalidInput.WithMessage("Line cost cannot be negative")
	}
	if unitCost.GreaterThan(unitCostWithoutDiscount) {
		return nil, shared.ErrInvalidInput.WithMessage("Discounted cost cannot exceed the undiscounted cost")
	}
	for _, l := range o.Lines {
		if l.ItemID == itemID {
			return nil, shared.ErrDuplicateLine.WithMessage(fmt.Sprintf("order already holds %s", sku))
		}
	}

	o.Lines = append(o.Lines, OrderLine{
		ID:                      uuid.New(),
		OrderID:                 o.ID,
		ItemID:                  itemID,
		SKU:                     sku,
		Quantity:                quantity,
		UnitCost:                unitCost,
		UnitCostWithoutDiscount: unitCostWithoutDiscount,
		VoucherID:               voucherID,
		CreatedAt:               time.Now(),
	})
	return &o.Lines[len(o.Lines)-1], nil
}

// Place records the creation event once all lines are in
func (o *Order) Place() error {
	if len(o.Lines) == 0 {
		return shared.ErrEmptyCart.WithMessage("Cannot place an order without lines")
	}
	o.AddDomainEvent(NewOrderCreatedEvent(o))
	return nil
}

// ApplyVoucher attaches a voucher to the order
func (o *Order) ApplyVoucher(voucherID uuid.UUID) {
	o.VoucherID = &voucherID
}

// AssignLogistic attaches a delivery record to the order
func (o *Order) AssignLogistic(logisticID uuid.UUID) {
	o.LogisticID = &logisticID
}

// FindLine returns the line with the given ID
func (o *Order) FindLine(lineID uuid.UUID) (*OrderLine, bool) {
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			return &o.Lines[i], true
		}
	}
	return nil, false
}

// TotalAmount sums the discounted line totals
func (o *Order) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Total())
	}
	return total
}

// TotalWithoutDiscount sums the undiscounted line totals
func (o *Order) TotalWithoutDiscount() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.UnitCostWithoutDiscount.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// MarkPaid moves the order into processing after the gateway confirmed payment
func (o *Order) MarkPaid() error {
	if !o.Status.CanTransitionTo(OrderStatusProcessing) {
		return shared.ErrInvalidState.WithMessage(fmt.Sprintf("Cannot confirm payment of order in %s status", o.Status))
	}
	now := time.Now()
	o.Status = OrderStatusProcessing
	o.PaidAt = &now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderPaidEvent(o))
	return nil
}

// Cancel cancels the order
func (o *Order) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.ErrInvalidState.WithMessage(fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	if strings.TrimSpace(reason) == "" {
		return shared.ErrInvalidReason.WithMessage("Cancel reason is required")
	}

	wasPaid := o.Status.IsPaid()
	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderCancelledEvent(o, wasPaid))
	return nil
}

// AdvanceFulfillment applies a logistics status change (shipped, delivered,
// completed, expiring). Payment and cancellation have dedicated methods.
func (o *Order) AdvanceFulfillment(target OrderStatus) error {
	switch target {
	case OrderStatusShipped, OrderStatusDelivered, OrderStatusCompleted, OrderStatusExpiring:
	default:
		return shared.ErrInvalidState.WithMessage(fmt.Sprintf("%q is not a fulfillment status", target))
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.ErrInvalidState.WithMessage(fmt.Sprintf("Cannot move order from %s to %s", o.Status, target))
	}
	from := o.Status
	o.Status = target
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from))
	return nil
}

// RefundLine creates the refund record for one line of a paid order
func (o *Order) RefundLine(lineID uuid.UUID, reason string) (*Refund, error) {
	if !o.Status.IsPaid() {
		return nil, shared.ErrInvalidState.WithMessage(fmt.Sprintf("Cannot refund order in %s status", o.Status))
	}
	line, ok := o.FindLine(lineID)
	if !ok {
		return nil, shared.ErrNotFound.WithMessage("Order line not found")
	}
	refund, err := NewRefund(o, line, reason)
	if err != nil {
		return nil, err
	}
	o.AddDomainEvent(NewOrderLineRefundedEvent(o, refund))
	return refund, nil
}
