package trade

import (
	"context"

	appinventory "github.com/storefront/backend/internal/application/inventory"
	"github.com/storefront/backend/internal/domain/trade"
)

// TransactionScope provides transactional access to trade repositories.
// Everything done through the repositories handed to fn commits or rolls
// back together, including stock adjustments applied by the ledger.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories extends the stock repositories with the trade
// aggregates so checkout, payment and refund can adjust stock in the same
// transaction.
type TransactionalRepositories interface {
	appinventory.TransactionalRepositories
	CartRepo() trade.CartRepository
	OrderRepo() trade.OrderRepository
	RefundRepo() trade.RefundRepository
	AddressRepo() trade.AddressRepository
	VoucherRepo() trade.VoucherRepository
}
