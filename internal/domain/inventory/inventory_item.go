package inventory

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// MaxStock is the largest value a stock counter can hold (INTEGER column)
const MaxStock = math.MaxInt32

// Direction of a stock adjustment
type Direction string

const (
	Increase Direction = "increase"
	Decrease Direction = "decrease"
)

// IsValid reports whether d is a known direction
func (d Direction) IsValid() bool {
	return d == Increase || d == Decrease
}

// Counter names one of the two stock counters of an item
type Counter string

const (
	// CounterAvailable is the quantity sellable right now
	CounterAvailable Counter = "available"
	// CounterActual is the quantity physically held
	CounterActual Counter = "actual"
)

// NormalizeSKU trims and upper-cases a SKU for lookups
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

// InventoryItem is a purchasable variant of a product with its stock counters.
// Invariant: ActualStock >= AvailableStock >= 0.
type InventoryItem struct {
	shared.BaseAggregateRoot
	SKU            string
	ProductID      uuid.UUID
	Price          decimal.Decimal
	AvailableStock int
	ActualStock    int
	IsActive       bool
	IsSuppliable   bool
}

// NewInventoryItem creates an active, suppliable item with the given counters
func NewInventoryItem(sku string, productID uuid.UUID, price decimal.Decimal, available, actual int) (*InventoryItem, error) {
	sku = NormalizeSKU(sku)
	if sku == "" {
		return nil, shared.ErrInvalidInput.WithMessage("SKU cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("Product ID cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.ErrInvalidInput.WithMessage("Price cannot be negative")
	}
	if available < 0 || actual < available || actual > MaxStock {
		return nil, shared.ErrStockInvariantViolated.WithMessage(
			fmt.Sprintf("invalid counters available=%d actual=%d", available, actual))
	}
	return &InventoryItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               sku,
		ProductID:         productID,
		Price:             price,
		AvailableStock:    available,
		ActualStock:       actual,
		IsActive:          true,
		IsSuppliable:      true,
	}, nil
}

// Stock returns the value of the given counter
func (i *InventoryItem) Stock(counter Counter) int {
	if counter == CounterActual {
		return i.ActualStock
	}
	return i.AvailableStock
}

// AdjustAvailable moves the available counter and returns its new value
func (i *InventoryItem) AdjustAvailable(quantity int, dir Direction) (int, error) {
	return i.Adjust(CounterAvailable, quantity, dir)
}

// AdjustActual moves the actual counter and returns its new value
func (i *InventoryItem) AdjustActual(quantity int, dir Direction) (int, error) {
	return i.Adjust(CounterActual, quantity, dir)
}

// Adjust applies quantity to counter in direction dir.
// A decrease that would take the counter below zero fails with
// ErrOutOfStock; reaching exactly zero succeeds and records a
// StockDepletedEvent. Nothing is mutated on failure.
func (i *InventoryItem) Adjust(counter Counter, quantity int, dir Direction) (int, error) {
	if counter != CounterAvailable && counter != CounterActual {
		return 0, shared.ErrInvalidOperation.WithMessage(fmt.Sprintf("unknown stock counter %q", counter))
	}
	if !dir.IsValid() {
		return 0, shared.ErrInvalidOperation.WithMessage(fmt.Sprintf("unknown direction %q", dir))
	}
	if quantity < 0 {
		return 0, shared.ErrInvalidOperation.WithMessage(fmt.Sprintf("quantity %d must not be negative", quantity))
	}

	current := i.Stock(counter)
	if dir == Increase && quantity > MaxStock-current {
		return 0, shared.ErrInvalidOperation.WithMessage(
			fmt.Sprintf("%s stock of %s is %d, adding %d exceeds %d", counter, i.SKU, current, quantity, MaxStock))
	}
	next := current + quantity
	if dir == Decrease {
		next = current - quantity
		if next < 0 {
			return 0, shared.ErrOutOfStock.WithMessage(
				fmt.Sprintf("%s stock of %s is %d, cannot remove %d", counter, i.SKU, current, quantity))
		}
	}

	available, actual := i.AvailableStock, i.ActualStock
	if counter == CounterAvailable {
		available = next
	} else {
		actual = next
	}
	if actual < available {
		return 0, shared.ErrStockInvariantViolated.WithMessage(
			fmt.Sprintf("%s would have available=%d above actual=%d", i.SKU, available, actual))
	}

	i.AvailableStock, i.ActualStock = available, actual
	i.IncrementVersion()
	i.AddDomainEvent(NewStockAdjustedEvent(i, counter, dir, quantity, current, next))
	if dir == Decrease && next == 0 && quantity > 0 {
		i.AddDomainEvent(NewStockDepletedEvent(i, counter))
	}
	return next, nil
}

// CheckConsistency fails when the actual counter is below the available one
func (i *InventoryItem) CheckConsistency() error {
	if i.ActualStock < i.AvailableStock {
		return shared.ErrInvalidStockValue.WithMessage(
			fmt.Sprintf("%s has actual=%d below available=%d", i.SKU, i.ActualStock, i.AvailableStock))
	}
	return nil
}

// CheckPurchasable verifies the item can supply quantity units right now
func (i *InventoryItem) CheckPurchasable(quantity int) error {
	if quantity < 1 {
		return shared.ErrInvalidQuantity
	}
	if i.AvailableStock <= 0 {
		return shared.ErrNoStockAvailable.WithMessage(fmt.Sprintf("%s is out of stock", i.SKU))
	}
	if !i.IsSuppliable {
		return shared.ErrNoStockAvailable.WithMessage(fmt.Sprintf("%s is not suppliable", i.SKU))
	}
	if !i.IsActive {
		return shared.ErrNoStockAvailable.WithMessage(fmt.Sprintf("%s is not active", i.SKU))
	}
	if i.AvailableStock < quantity {
		return shared.ErrInsufficientStock.WithMessage(
			fmt.Sprintf("%s has %d available, %d requested", i.SKU, i.AvailableStock, quantity))
	}
	return nil
}

func (i *InventoryItem) Activate() {
	if !i.IsActive {
		i.IsActive = true
		i.IncrementVersion()
	}
}

func (i *InventoryItem) Deactivate() {
	if i.IsActive {
		i.IsActive = false
		i.IncrementVersion()
	}
}

// SetActive activates or deactivates the item
func (i *InventoryItem) SetActive(active bool) {
	if active {
		i.Activate()
	} else {
		i.Deactivate()
	}
}

// SetSuppliable toggles whether the item can currently be supplied
func (i *InventoryItem) SetSuppliable(suppliable bool) {
	if i.IsSuppliable != suppliable {
		i.IsSuppliable = suppliable
		i.IncrementVersion()
	}
}
