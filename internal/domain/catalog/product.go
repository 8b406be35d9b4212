package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Product is a sellable product; its purchasable variants are inventory items
type Product struct {
	shared.BaseAggregateRoot
	SKU        string
	Title      string
	CategoryID uuid.UUID
	IsActive   bool
}

// NewProduct creates an active product in a category
func NewProduct(sku, title string, categoryID uuid.UUID) (*Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, shared.ErrInvalidInput.WithMessage("Product SKU cannot be empty")
	}
	if categoryID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("Category ID cannot be empty")
	}
	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               strings.ToUpper(sku),
		Title:             strings.TrimSpace(title),
		CategoryID:        categoryID,
		IsActive:          true,
	}, nil
}

// SetActive activates or deactivates the product
func (p *Product) SetActive(active bool) {
	if active {
		p.Activate()
	} else {
		p.Deactivate()
	}
}

func (p *Product) Activate() {
	if p.IsActive {
		return
	}
	p.IsActive = true
	p.IncrementVersion()
}

func (p *Product) Deactivate() {
	if !p.IsActive {
		return
	}
	p.IsActive = false
	p.IncrementVersion()
}
