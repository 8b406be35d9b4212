package catalog

import (
	"context"

	"github.com/google/uuid"
)

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)

	// FindAncestry returns the category and all of its parents, leaf first.
	// Returns shared.ErrNotFound if the category does not exist.
	FindAncestry(ctx context.Context, id uuid.UUID) (Ancestry, error)

	Save(ctx context.Context, category *Category) error
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// FindBySKUForUpdate reads the product holding a row lock until the
	// surrounding transaction ends
	FindBySKUForUpdate(ctx context.Context, sku string) (*Product, error)

	Save(ctx context.Context, product *Product) error
}
