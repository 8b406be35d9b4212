package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAddressRepository implements AddressRepository using GORM
type GormAddressRepository struct {
	db *gorm.DB
}

// NewGormAddressRepository creates a new GormAddressRepository
func NewGormAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// FindByID finds an address by its ID
func (r *GormAddressRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Address, error) {
	var model models.AddressModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, shared.ErrNotFound.WithMessage("Address not found"), nil)
	}
	return model.ToDomain(), nil
}

// Save creates or updates an address
func (r *GormAddressRepository) Save(ctx context.Context, address *trade.Address) error {
	return r.db.WithContext(ctx).Save(models.AddressModelFromDomain(address)).Error
}

// GormVoucherRepository implements VoucherRepository using GORM
type GormVoucherRepository struct {
	db *gorm.DB
}

// NewGormVoucherRepository creates a new GormVoucherRepository
func NewGormVoucherRepository(db *gorm.DB) *GormVoucherRepository {
	return &GormVoucherRepository{db: db}
}

// FindByID finds a voucher by its ID
func (r *GormVoucherRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Voucher, error) {
	var model models.VoucherModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err, shared.ErrNotFound.WithMessage("Voucher not found"), nil)
	}
	return model.ToDomain(), nil
}

// Save creates or updates a voucher
func (r *GormVoucherRepository) Save(ctx context.Context, voucher *trade.Voucher) error {
	err := r.db.WithContext(ctx).Save(models.VoucherModelFromDomain(voucher)).Error
	return translateError(err, nil, shared.ErrInvalidInput.WithMessage("Voucher code already exists"))
}

var (
	_ trade.AddressRepository = (*GormAddressRepository)(nil)
	_ trade.VoucherRepository = (*GormVoucherRepository)(nil)
)
