package inventory

import (
	"context"

	"github.com/google/uuid"
)

// InventoryItemRepository defines the interface for inventory item persistence
type InventoryItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryItem, error)
	FindBySKU(ctx context.Context, sku string) (*InventoryItem, error)

	// FindBySKUForUpdate reads the item holding a row exclusive lock
	// (SELECT ... FOR UPDATE) until the surrounding transaction ends.
	FindBySKUForUpdate(ctx context.Context, sku string) (*InventoryItem, error)

	// FindByIDForUpdate is FindBySKUForUpdate keyed by ID
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*InventoryItem, error)

	// FindByProductForUpdate locks every item of a product, in ID order
	FindByProductForUpdate(ctx context.Context, productID uuid.UUID) ([]*InventoryItem, error)

	// Save creates or updates an item without a version check
	Save(ctx context.Context, item *InventoryItem) error

	// SaveWithLock updates the item only if the stored version is the one
	// that was read; returns shared.ErrConcurrencyConflict otherwise.
	SaveWithLock(ctx context.Context, item *InventoryItem) error
}
