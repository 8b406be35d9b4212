package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errCartNotFound = shared.ErrNotFound.WithMessage("Cart not found")

// GormCartRepository implements CartRepository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

func (r *GormCartRepository) load(ctx context.Context, lock bool, query string, args ...interface{}) (*trade.Cart, error) {
	db := r.db.WithContext(ctx)
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var model models.CartModel
	if err := db.Where(query, args...).First(&model).Error; err != nil {
		return nil, translateError(err, errCartNotFound, nil)
	}
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", model.ID).
		Order("created_at, id").
		Find(&model.Lines).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByID finds a cart with its lines
func (r *GormCartRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Cart, error) {
	return r.load(ctx, false, "id = ?", id)
}

// FindByIDForUpdate finds a cart with its lines and locks the cart row
func (r *GormCartRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.Cart, error) {
	return r.load(ctx, true, "id = ?", id)
}

// FindByUserID finds the cart owned by a user
func (r *GormCartRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*trade.Cart, error) {
	return r.load(ctx, false, "user_id = ?", userID)
}

// Save upserts the cart row and synchronises its lines: lines missing from
// the aggregate are deleted first, so an item removed and re-added does not
// collide on the (cart_id, item_id) index.
func (r *GormCartRepository) Save(ctx context.Context, cart *trade.Cart) error {
	model := models.CartModelFromDomain(cart)
	lines := model.Lines
	model.Lines = nil

	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Save(model).Error; err != nil {
		return translateError(err, nil, shared.ErrConcurrencyConflict.WithMessage("User already has a cart"))
	}

	keep := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		keep[i] = l.ID
	}
	del := db.Where("cart_id = ?", cart.ID)
	if len(keep) > 0 {
		del = del.Where("id NOT IN ?", keep)
	}
	if err := del.Delete(&models.CartLineModel{}).Error; err != nil {
		return err
	}

	for i := range lines {
		if err := db.Save(&lines[i]).Error; err != nil {
			return translateError(err, nil, shared.ErrDuplicateLine)
		}
	}
	return nil
}

var _ trade.CartRepository = (*GormCartRepository)(nil)
