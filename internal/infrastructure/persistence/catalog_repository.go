package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	var model models.CategoryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, shared.ErrNotFound.WithMessage("Category not found"), nil)
	}
	return model.ToDomain(), nil
}

// FindAncestry walks parent links from id up to the root
func (r *GormCategoryRepository) FindAncestry(ctx context.Context, id uuid.UUID) (catalog.Ancestry, error) {
	ancestry := make(catalog.Ancestry, 0, 4)
	next := &id
	for next != nil {
		if len(ancestry) == catalog.MaxCategoryDepth {
			return nil, fmt.Errorf("category %s: parent chain deeper than %d", id, catalog.MaxCategoryDepth)
		}
		c, err := r.FindByID(ctx, *next)
		if err != nil {
			return nil, err
		}
		ancestry = append(ancestry, *c)
		next = c.ParentID
	}
	return ancestry, nil
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	return r.db.WithContext(ctx).Save(models.CategoryModelFromDomain(category)).Error
}

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, shared.ErrNotFound.WithMessage("Product not found"), nil)
	}
	return model.ToDomain(), nil
}

// FindBySKU finds a product by its SKU
func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "sku = ?", sku).Error; err != nil {
		return nil, translateError(err, shared.ErrNotFound.WithMessage("Product not found"), nil)
	}
	return model.ToDomain(), nil
}

// FindBySKUForUpdate finds a product by SKU and locks the row
func (r *GormProductRepository) FindBySKUForUpdate(ctx context.Context, sku string) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "sku = ?", sku).Error; err != nil {
		return nil, translateError(err, shared.ErrNotFound.WithMessage("Product not found"), nil)
	}
	return model.ToDomain(), nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	err := r.db.WithContext(ctx).Save(models.ProductModelFromDomain(product)).Error
	return translateError(err, nil, shared.ErrInvalidInput.WithMessage("Product SKU already exists"))
}

var (
	_ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
	_ catalog.ProductRepository  = (*GormProductRepository)(nil)
)
