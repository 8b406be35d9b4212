package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRefundRepository implements RefundRepository using GORM
type GormRefundRepository struct {
	db *gorm.DB
}

// NewGormRefundRepository creates a new GormRefundRepository
func NewGormRefundRepository(db *gorm.DB) *GormRefundRepository {
	return &GormRefundRepository{db: db}
}

// Create inserts a refund; a second refund for the same line violates the
// unique order_line_id index and is reported as ErrAlreadyRefunded
func (r *GormRefundRepository) Create(ctx context.Context, refund *trade.Refund) error {
	err := r.db.WithContext(ctx).Create(models.RefundModelFromDomain(refund)).Error
	return translateError(err, nil, shared.ErrAlreadyRefunded)
}

// ExistsForLine reports whether the line was already refunded
func (r *GormRefundRepository) ExistsForLine(ctx context.Context, lineID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.RefundModel{}).
		Where("order_line_id = ?", lineID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByOrder lists the refunds of an order, oldest first
func (r *GormRefundRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]trade.Refund, error) {
	var rows []models.RefundModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at, id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	refunds := make([]trade.Refund, len(rows))
	for i := range rows {
		refunds[i] = *rows[i].ToDomain()
	}
	return refunds, nil
}

var _ trade.RefundRepository = (*GormRefundRepository)(nil)
