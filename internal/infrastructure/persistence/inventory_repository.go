package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errItemNotFound = shared.ErrNotFound.WithMessage("Inventory item not found")

// GormInventoryItemRepository implements InventoryItemRepository using GORM
type GormInventoryItemRepository struct {
	db *gorm.DB
}

// NewGormInventoryItemRepository creates a new GormInventoryItemRepository
func NewGormInventoryItemRepository(db *gorm.DB) *GormInventoryItemRepository {
	return &GormInventoryItemRepository{db: db}
}

func (r *GormInventoryItemRepository) first(ctx context.Context, lock bool, query string, args ...interface{}) (*inventory.InventoryItem, error) {
	db := r.db.WithContext(ctx)
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var model models.InventoryItemModel
	if err := db.Where(query, args...).First(&model).Error; err != nil {
		return nil, translateError(err, errItemNotFound, nil)
	}
	return model.ToDomain(), nil
}

// FindByID finds an inventory item by its ID
func (r *GormInventoryItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	return r.first(ctx, false, "id = ?", id)
}

// FindBySKU finds an inventory item by its SKU
func (r *GormInventoryItemRepository) FindBySKU(ctx context.Context, sku string) (*inventory.InventoryItem, error) {
	return r.first(ctx, false, "sku = ?", sku)
}

// FindBySKUForUpdate finds an inventory item by SKU and locks the row
// (SELECT ... FOR UPDATE) until the surrounding transaction ends
func (r *GormInventoryItemRepository) FindBySKUForUpdate(ctx context.Context, sku string) (*inventory.InventoryItem, error) {
	return r.first(ctx, true, "sku = ?", sku)
}

// FindByIDForUpdate finds an inventory item by ID and locks the row
func (r *GormInventoryItemRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.InventoryItem, error) {
	return r.first(ctx, true, "id = ?", id)
}

// FindByProductForUpdate locks the items of a product. Rows are locked in ID
// order so two cascades over the same product cannot deadlock.
func (r *GormInventoryItemRepository) FindByProductForUpdate(ctx context.Context, productID uuid.UUID) ([]*inventory.InventoryItem, error) {
	var rows []models.InventoryItemModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ?", productID).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]*inventory.InventoryItem, len(rows))
	for i := range rows {
		items[i] = rows[i].ToDomain()
	}
	return items, nil
}

// Save creates or updates an inventory item
func (r *GormInventoryItemRepository) Save(ctx context.Context, item *inventory.InventoryItem) error {
	model := models.InventoryItemModelFromDomain(item)
	err := r.db.WithContext(ctx).Save(model).Error
	return translateError(err, nil, shared.ErrInvalidInput.WithMessage("SKU already exists"))
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormInventoryItemRepository) SaveWithLock(ctx context.Context, item *inventory.InventoryItem) error {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryItemModel{}).
		Where("id = ? AND version = ?", item.ID, item.Version-1).
		Updates(map[string]interface{}{
			"price":           item.Price,
			"available_stock": item.AvailableStock,
			"actual_stock":    item.ActualStock,
			"is_active":       item.IsActive,
			"is_suppliable":   item.IsSuppliable,
			"version":         item.Version,
			"updated_at":      item.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return staleVersion("Inventory item")
	}
	return nil
}

// Ensure GormInventoryItemRepository implements InventoryItemRepository
var _ inventory.InventoryItemRepository = (*GormInventoryItemRepository)(nil)
