package persistence

import (
	"context"

	appinv "github.com/storefront/backend/internal/application/inventory"
	apptrade "github.com/storefront/backend/internal/application/trade"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// Repositories gives access to every repository bound to one *gorm.DB.
// Bound to the pool it serves plain reads; bound to a transaction it is the
// set handed to a TransactionScope callback.
type Repositories struct {
	db *gorm.DB
}

// NewRepositories creates repositories bound to db
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{db: db}
}

func (r *Repositories) InventoryRepo() inventory.InventoryItemRepository {
	return NewGormInventoryItemRepository(r.db)
}

func (r *Repositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.db)
}

func (r *Repositories) CategoryRepo() catalog.CategoryRepository {
	return NewGormCategoryRepository(r.db)
}

func (r *Repositories) CartRepo() trade.CartRepository {
	return NewGormCartRepository(r.db)
}

func (r *Repositories) OrderRepo() trade.OrderRepository {
	return NewGormOrderRepository(r.db)
}

func (r *Repositories) RefundRepo() trade.RefundRepository {
	return NewGormRefundRepository(r.db)
}

func (r *Repositories) AddressRepo() trade.AddressRepository {
	return NewGormAddressRepository(r.db)
}

func (r *Repositories) VoucherRepo() trade.VoucherRepository {
	return NewGormVoucherRepository(r.db)
}

// GormTransactionScope implements the stock ledger's TransactionScope using
// GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repositories{db: tx})
	})
}

// GormTradeTransactionScope implements the trade TransactionScope: cart,
// order, refund and stock writes share one transaction.
type GormTradeTransactionScope struct {
	db *gorm.DB
}

// NewGormTradeTransactionScope creates a new GormTradeTransactionScope.
func NewGormTradeTransactionScope(db *gorm.DB) *GormTradeTransactionScope {
	return &GormTradeTransactionScope{db: db}
}

// Execute runs fn within a database transaction
func (s *GormTradeTransactionScope) Execute(ctx context.Context, fn func(repos apptrade.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repositories{db: tx})
	})
}

var (
	_ appinv.TransactionScope            = (*GormTransactionScope)(nil)
	_ apptrade.TransactionScope          = (*GormTradeTransactionScope)(nil)
	_ appinv.TransactionalRepositories   = (*Repositories)(nil)
	_ apptrade.TransactionalRepositories = (*Repositories)(nil)
)
