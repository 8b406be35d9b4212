package trade

import (
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// MaxRefundReasonLength bounds the free-text refund reason
const MaxRefundReasonLength = 500

// Refund is an immutable record that an order line was returned
type Refund struct {
	shared.BaseEntity
	OrderID     uuid.UUID
	OrderLineID uuid.UUID
	ItemID      uuid.UUID
	SKU         string
	Quantity    int
	Reason      string
}

// NewRefund creates a refund for the whole quantity of line
func NewRefund(order *Order, line *OrderLine, reason string) (*Refund, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, shared.ErrInvalidReason
	}
	if len(reason) > MaxRefundReasonLength {
		return nil, shared.ErrInvalidReason.WithMessage("Refund reason is too long")
	}
	return &Refund{
		BaseEntity:  shared.NewBaseEntity(),
		OrderID:     order.ID,
		OrderLineID: line.ID,
		ItemID:      line.ItemID,
		SKU:         line.SKU,
		Quantity:    line.Quantity,
		Reason:      reason,
	}, nil
}
