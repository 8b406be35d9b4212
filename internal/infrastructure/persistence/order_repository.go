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

var errOrderNotFound = shared.ErrNotFound.WithMessage("Order not found")

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// load reads the order row (optionally locked) and then its lines. Lines
// are never updated after creation, so they are read without a lock.
func (r *GormOrderRepository) load(ctx context.Context, lock bool, query string, args ...interface{}) (*trade.Order, error) {
	db := r.db.WithContext(ctx)
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var model models.OrderModel
	if err := db.Where(query, args...).First(&model).Error; err != nil {
		return nil, translateError(err, errOrderNotFound, nil)
	}
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", model.ID).
		Order("created_at, id").
		Find(&model.Lines).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByID finds an order with its lines
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	return r.load(ctx, false, "id = ?", id)
}

// FindByIDForUpdate finds an order and locks its row
func (r *GormOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	return r.load(ctx, true, "id = ?", id)
}

// FindByTransactionRef finds the order created for a gateway transaction
func (r *GormOrderRepository) FindByTransactionRef(ctx context.Context, ref string) (*trade.Order, error) {
	return r.load(ctx, false, "transaction_ref = ?", ref)
}

// FindByTransactionRefForUpdate finds the order by transaction ref and locks its row
func (r *GormOrderRepository) FindByTransactionRefForUpdate(ctx context.Context, ref string) (*trade.Order, error) {
	return r.load(ctx, true, "transaction_ref = ?", ref)
}

// FindByLineID finds the order owning a line
func (r *GormOrderRepository) FindByLineID(ctx context.Context, lineID uuid.UUID) (*trade.Order, error) {
	var line models.OrderLineModel
	if err := r.db.WithContext(ctx).Select("order_id").First(&line, "id = ?", lineID).Error; err != nil {
		return nil, translateError(err, shared.ErrNotFound.WithMessage("Order line not found"), nil)
	}
	return r.FindByID(ctx, line.OrderID)
}

// ExistsByTransactionRef reports whether an order already uses ref
func (r *GormOrderRepository) ExistsByTransactionRef(ctx context.Context, ref string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("transaction_ref = ?", ref).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByUser returns the orders of a user, newest first, with their lines
func (r *GormOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]trade.Order, error) {
	var rows []models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at, id")
		}).
		Where("user_id = ?", userID).
		Order("created_at DESC, id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]trade.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

// CountByStatus returns the number of orders per status for a user
func (r *GormOrderRepository) CountByStatus(ctx context.Context, userID uuid.UUID) (map[trade.OrderStatus]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[trade.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[trade.OrderStatus(row.Status)] = row.Count
	}
	return counts, nil
}

// Create inserts a new order with its lines
func (r *GormOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	err := r.db.WithContext(ctx).Create(models.OrderModelFromDomain(order)).Error
	return translateError(err, nil, shared.ErrDuplicateTransactionRef)
}

// SaveWithLock updates the mutable order columns if the stored version is
// the one the aggregate was loaded with
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *trade.Order) error {
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ? AND version = ?", order.ID, order.Version-1).
		Updates(map[string]interface{}{
			"status":        string(order.Status),
			"voucher_id":    order.VoucherID,
			"logistic_id":   order.LogisticID,
			"paid_at":       order.PaidAt,
			"cancelled_at":  order.CancelledAt,
			"cancel_reason": order.CancelReason,
			"version":       order.Version,
			"updated_at":    order.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return staleVersion("Order")
	}
	return nil
}

var _ trade.OrderRepository = (*GormOrderRepository)(nil)
