package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/trade"
)

// CartLineResponse is the read model of a cart line
type CartLineResponse struct {
	ID       uuid.UUID `json:"id"`
	CartID   uuid.UUID `json:"cart_id"`
	ItemID   uuid.UUID `json:"item_id"`
	SKU      string    `json:"sku"`
	Quantity int       `json:"quantity"`
}

// CartResponse is the read model of a cart
type CartResponse struct {
	ID            uuid.UUID          `json:"id"`
	UserID        uuid.UUID          `json:"user_id"`
	Lines         []CartLineResponse `json:"lines"`
	TotalQuantity int                `json:"total_quantity"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

func toCartLineResponse(l *trade.CartLine) CartLineResponse {
	return CartLineResponse{
		ID:       l.ID,
		CartID:   l.CartID,
		ItemID:   l.ItemID,
		SKU:      l.SKU,
		Quantity: l.Quantity,
	}
}

// ToCartResponse converts a cart to its read model
func ToCartResponse(c *trade.Cart) CartResponse {
	lines := make([]CartLineResponse, len(c.Lines))
	for i := range c.Lines {
		lines[i] = toCartLineResponse(&c.Lines[i])
	}
	return CartResponse{
		ID:            c.ID,
		UserID:        c.UserID,
		Lines:         lines,
		TotalQuantity: c.TotalQuantity(),
		UpdatedAt:     c.UpdatedAt,
	}
}

// OrderLineResponse is the read model of an order line
type OrderLineResponse struct {
	ID                      uuid.UUID       `json:"id"`
	ItemID                  uuid.UUID       `json:"item_id"`
	SKU                     string          `json:"sku"`
	Quantity                int             `json:"quantity"`
	UnitCost                decimal.Decimal `json:"unit_cost"`
	UnitCostWithoutDiscount decimal.Decimal `json:"unit_cost_without_discount"`
	VoucherID               *uuid.UUID      `json:"voucher_id,omitempty"`
}

// OrderResponse is the read model of an order
type OrderResponse struct {
	ID                   uuid.UUID           `json:"id"`
	UserID               uuid.UUID           `json:"user_id"`
	TransactionRef       string              `json:"transaction_ref"`
	Status               string              `json:"status"`
	Footnote             string              `json:"footnote,omitempty"`
	AddressID            uuid.UUID           `json:"address_id"`
	VoucherID            *uuid.UUID          `json:"voucher_id,omitempty"`
	LogisticID           *uuid.UUID          `json:"logistic_id,omitempty"`
	Lines                []OrderLineResponse `json:"lines"`
	TotalQuantity        int                 `json:"total_quantity"`
	TotalAmount          decimal.Decimal     `json:"total_amount"`
	TotalWithoutDiscount decimal.Decimal     `json:"total_without_discount"`
	PaidAt               *time.Time          `json:"paid_at,omitempty"`
	CancelledAt          *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason         string              `json:"cancel_reason,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
}

// ToOrderResponse converts an order to its read model
func ToOrderResponse(o *trade.Order) OrderResponse {
	lines := make([]OrderLineResponse, len(o.Lines))
	quantity := 0
	for i, l := range o.Lines {
		quantity += l.Quantity
		lines[i] = OrderLineResponse{
			ID:                      l.ID,
			ItemID:                  l.ItemID,
			SKU:                     l.SKU,
			Quantity:                l.Quantity,
			UnitCost:                l.UnitCost,
			UnitCostWithoutDiscount: l.UnitCostWithoutDiscount,
			VoucherID:               l.VoucherID,
		}
	}
	return OrderResponse{
		ID:                   o.ID,
		UserID:               o.UserID,
		TransactionRef:       o.TransactionRef,
		Status:               o.Status.String(),
		Footnote:             o.Footnote,
		AddressID:            o.AddressID,
		VoucherID:            o.VoucherID,
		LogisticID:           o.LogisticID,
		Lines:                lines,
		TotalQuantity:        quantity,
		TotalAmount:          o.TotalAmount(),
		TotalWithoutDiscount: o.TotalWithoutDiscount(),
		PaidAt:               o.PaidAt,
		CancelledAt:          o.CancelledAt,
		CancelReason:         o.CancelReason,
		CreatedAt:            o.CreatedAt,
	}
}

// RefundResponse is the read model of a refund
type RefundResponse struct {
	ID          uuid.UUID `json:"id"`
	OrderID     uuid.UUID `json:"order_id"`
	OrderLineID uuid.UUID `json:"order_line_id"`
	SKU         string    `json:"sku"`
	Quantity    int       `json:"quantity"`
	Reason      string    `json:"reason"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToRefundResponse converts a refund to its read model
func ToRefundResponse(r *trade.Refund) RefundResponse {
	return RefundResponse{
		ID:          r.ID,
		OrderID:     r.OrderID,
		OrderLineID: r.OrderLineID,
		SKU:         r.SKU,
		Quantity:    r.Quantity,
		Reason:      r.Reason,
		CreatedAt:   r.CreatedAt,
	}
}

// CheckoutRequest carries the inputs of turning a cart into an order
type CheckoutRequest struct {
	CartID         uuid.UUID
	AddressID      uuid.UUID
	Footnote       string
	TransactionRef string
	VoucherID      *uuid.UUID
	LogisticID     *uuid.UUID
}
