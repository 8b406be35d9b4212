package inventory

import (
	"context"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to stock repositories.
// Repository operations inside fn share one database transaction that is
// committed when fn returns nil and rolled back otherwise.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to the repositories the stock ledger
// needs. Larger scopes (checkout, payment, refund) embed this interface so the
// ledger can join their transaction.
type TransactionalRepositories interface {
	InventoryRepo() inventory.InventoryItemRepository
	ProductRepo() catalog.ProductRepository
	CategoryRepo() catalog.CategoryRepository
}

// NoOpTransactionScope runs fn against plain repositories without a
// transaction. Used by unit tests.
type NoOpTransactionScope struct {
	inventoryRepo inventory.InventoryItemRepository
	productRepo   catalog.ProductRepository
	categoryRepo  catalog.CategoryRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	inventoryRepo inventory.InventoryItemRepository,
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		inventoryRepo: inventoryRepo,
		productRepo:   productRepo,
		categoryRepo:  categoryRepo,
	}
}

func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) InventoryRepo() inventory.InventoryItemRepository { return s.inventoryRepo }
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository           { return s.productRepo }
func (s *NoOpTransactionScope) CategoryRepo() catalog.CategoryRepository         { return s.categoryRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
