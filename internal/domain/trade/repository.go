package trade

import (
	"context"

	"github.com/google/uuid"
)

// CartRepository defines the interface for cart persistence
type CartRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Cart, error)

	// FindByIDForUpdate loads the cart with its lines, holding a row lock on
	// the cart until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Cart, error)

	FindByUserID(ctx context.Context, userID uuid.UUID) (*Cart, error)

	// Save persists the cart and synchronises its lines: lines no longer
	// present are deleted, the rest are upserted.
	Save(ctx context.Context, cart *Cart) error
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByTransactionRef(ctx context.Context, ref string) (*Order, error)
	FindByTransactionRefForUpdate(ctx context.Context, ref string) (*Order, error)

	// FindByLineID returns the order owning the given line
	FindByLineID(ctx context.Context, lineID uuid.UUID) (*Order, error)

	ExistsByTransactionRef(ctx context.Context, ref string) (bool, error)

	// ListByUser returns every order of a user with its lines, newest first
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)

	// CountByStatus returns the number of orders per status for a user
	CountByStatus(ctx context.Context, userID uuid.UUID) (map[OrderStatus]int64, error)

	// Create inserts a new order with its lines
	Create(ctx context.Context, order *Order) error

	// SaveWithLock updates order columns if the stored version matches
	SaveWithLock(ctx context.Context, order *Order) error
}

// RefundRepository defines the interface for refund persistence
type RefundRepository interface {
	Create(ctx context.Context, refund *Refund) error
	ExistsForLine(ctx context.Context, lineID uuid.UUID) (bool, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Refund, error)
}

// AddressRepository defines the interface for address persistence
type AddressRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Address, error)
	Save(ctx context.Context, address *Address) error
}

// VoucherRepository defines the interface for voucher persistence
type VoucherRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Voucher, error)
	Save(ctx context.Context, voucher *Voucher) error
}
