package trade

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

var hundred = decimal.NewFromInt(100)

// Voucher grants a percentage off the list price of order lines
type Voucher struct {
	shared.BaseEntity
	Code            string
	DiscountPercent decimal.Decimal
	IsActive        bool
	ValidUntil      *time.Time
}

// NewVoucher creates an active voucher
func NewVoucher(code string, discountPercent decimal.Decimal, validUntil *time.Time) (*Voucher, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.ErrInvalidInput.WithMessage("Voucher code cannot be empty")
	}
	if discountPercent.IsNegative() || discountPercent.GreaterThan(hundred) {
		return nil, shared.ErrInvalidInput.WithMessage("Discount percent must be between 0 and 100")
	}
	return &Voucher{
		BaseEntity:      shared.NewBaseEntity(),
		Code:            code,
		DiscountPercent: discountPercent,
		IsActive:        true,
		ValidUntil:      validUntil,
	}, nil
}

// CheckUsable fails when the voucher is inactive or expired at now
func (v *Voucher) CheckUsable(now time.Time) error {
	if !v.IsActive {
		return shared.ErrVoucherNotActive
	}
	if v.ValidUntil != nil && now.After(*v.ValidUntil) {
		return shared.ErrVoucherNotActive.WithMessage("Voucher has expired")
	}
	return nil
}

// Apply returns price minus the voucher discount, rounded to cents
func (v *Voucher) Apply(price decimal.Decimal) decimal.Decimal {
	factor := hundred.Sub(v.DiscountPercent).Div(hundred)
	return price.Mul(factor).Round(2)
}
