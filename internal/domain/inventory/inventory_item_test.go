package inventory

import (
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestItem(t *testing.T, available, actual int) *InventoryItem {
	t.Helper()
	item, err := NewInventoryItem("sku-1", uuid.New(), decimal.NewFromInt(100), available, actual)
	require.NoError(t, err)
	return item
}

func TestNewInventoryItem(t *testing.T) {
	t.Run("creates item with normalized sku", func(t *testing.T) {
		item := createTestItem(t, 3, 5)
		assert.Equal(t, "SKU-1", item.SKU)
		assert.Equal(t, 3, item.AvailableStock)
		assert.Equal(t, 5, item.ActualStock)
		assert.True(t, item.IsActive)
		assert.True(t, item.IsSuppliable)
	})

	t.Run("rejects available above actual", func(t *testing.T) {
		_, err := NewInventoryItem("sku", uuid.New(), decimal.Zero, 6, 5)
		assert.True(t, errors.Is(err, shared.ErrStockInvariantViolated))
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := NewInventoryItem("sku", uuid.New(), decimal.NewFromInt(-1), 0, 0)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("rejects nil product", func(t *testing.T) {
		_, err := NewInventoryItem("sku", uuid.Nil, decimal.Zero, 0, 0)
		assert.Error(t, err)
	})
}

func TestInventoryItem_Adjust(t *testing.T) {
	t.Run("decrease to positive value", func(t *testing.T) {
		item := createTestItem(t, 5, 5)
		v, err := item.AdjustAvailable(2, Decrease)
		require.NoError(t, err)
		assert.Equal(t, 3, v)
		assert.Equal(t, 2, item.Version)
		require.Len(t, item.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeStockAdjusted, item.GetDomainEvents()[0].EventType())
	})

	t.Run("decrease to exactly zero raises depletion signal", func(t *testing.T) {
		item := createTestItem(t, 1, 1)
		v, err := item.AdjustAvailable(1, Decrease)
		require.NoError(t, err)
		assert.Equal(t, 0, v)

		events := item.GetDomainEvents()
		require.Len(t, events, 2)
		depleted, ok := events[1].(*StockDepletedEvent)
		require.True(t, ok)
		assert.Equal(t, CounterAvailable, depleted.Counter)
		assert.Equal(t, "SKU-1", depleted.SKU)
	})

	t.Run("decrease below zero fails without mutation", func(t *testing.T) {
		item := createTestItem(t, 1, 1)
		_, err := item.AdjustAvailable(2, Decrease)
		assert.True(t, errors.Is(err, shared.ErrOutOfStock))
		assert.Equal(t, 1, item.AvailableStock)
		assert.Equal(t, 1, item.Version)
		assert.Empty(t, item.GetDomainEvents())
	})

	t.Run("negative quantity is an invalid operation", func(t *testing.T) {
		item := createTestItem(t, 1, 1)
		_, err := item.AdjustActual(-1, Increase)
		assert.True(t, errors.Is(err, shared.ErrInvalidOperation))
	})

	t.Run("unknown direction is an invalid operation", func(t *testing.T) {
		item := createTestItem(t, 1, 1)
		_, err := item.AdjustActual(1, Direction("sideways"))
		assert.True(t, errors.Is(err, shared.ErrInvalidOperation))
	})

	t.Run("unknown counter is an invalid operation", func(t *testing.T) {
		item := createTestItem(t, 1, 1)
		_, err := item.Adjust(Counter("reserved"), 1, Increase)
		assert.True(t, errors.Is(err, shared.ErrInvalidOperation))
	})

	t.Run("available cannot rise above actual", func(t *testing.T) {
		item := createTestItem(t, 5, 5)
		_, err := item.AdjustAvailable(1, Increase)
		assert.True(t, errors.Is(err, shared.ErrStockInvariantViolated))
		assert.Equal(t, 5, item.AvailableStock)
	})

	t.Run("increase past the counter limit fails without mutation", func(t *testing.T) {
		item := createTestItem(t, 5, 10)
		version := item.GetVersion()

		_, err := item.Adjust(CounterAvailable, math.MaxInt-2, Increase)
		assert.True(t, errors.Is(err, shared.ErrInvalidOperation))
		_, err = item.AdjustActual(MaxStock-9, Increase)
		assert.True(t, errors.Is(err, shared.ErrInvalidOperation))

		assert.Equal(t, 5, item.AvailableStock)
		assert.Equal(t, 10, item.ActualStock)
		assert.Equal(t, version, item.GetVersion())
		assert.Empty(t, item.GetDomainEvents())
		assert.NoError(t, item.CheckConsistency())
	})

	t.Run("increase up to the counter limit succeeds", func(t *testing.T) {
		item := createTestItem(t, 0, 10)
		next, err := item.AdjustActual(MaxStock-10, Increase)
		require.NoError(t, err)
		assert.Equal(t, MaxStock, next)
	})

	t.Run("actual cannot drop below available", func(t *testing.T) {
		item := createTestItem(t, 5, 5)
		_, err := item.AdjustActual(1, Decrease)
		assert.True(t, errors.Is(err, shared.ErrStockInvariantViolated))
		assert.Equal(t, 5, item.ActualStock)
	})

	t.Run("payment then refund ordering keeps invariant", func(t *testing.T) {
		item := createTestItem(t, 5, 5)
		_, err := item.AdjustAvailable(2, Decrease)
		require.NoError(t, err)
		_, err = item.AdjustActual(2, Decrease)
		require.NoError(t, err)
		assert.Equal(t, 3, item.AvailableStock)
		assert.Equal(t, 3, item.ActualStock)

		_, err = item.AdjustActual(2, Increase)
		require.NoError(t, err)
		_, err = item.AdjustAvailable(2, Increase)
		require.NoError(t, err)
		assert.Equal(t, 5, item.AvailableStock)
		assert.Equal(t, 5, item.ActualStock)
		assert.NoError(t, item.CheckConsistency())
	})

	t.Run("round trip restores the original value", func(t *testing.T) {
		for _, q := range []int{0, 1, 4, 7} {
			item := createTestItem(t, 7, 10)
			_, err := item.AdjustAvailable(q, Decrease)
			require.NoError(t, err)
			v, err := item.AdjustAvailable(q, Increase)
			require.NoError(t, err)
			assert.Equal(t, 7, v)
		}
	})

	t.Run("zero quantity decrease at zero does not signal depletion", func(t *testing.T) {
		item := createTestItem(t, 0, 0)
		v, err := item.AdjustAvailable(0, Decrease)
		require.NoError(t, err)
		assert.Equal(t, 0, v)
		assert.Len(t, item.GetDomainEvents(), 1)
	})
}

func TestInventoryItem_CheckPurchasable(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(i *InventoryItem)
		qty     int
		wantErr *shared.DomainError
	}{
		{name: "enough stock", qty: 2},
		{name: "exact stock", qty: 5},
		{name: "exceeds available", qty: 6, wantErr: shared.ErrInsufficientStock},
		{name: "zero available", qty: 1, mutate: func(i *InventoryItem) { i.AvailableStock = 0 }, wantErr: shared.ErrNoStockAvailable},
		{name: "not suppliable", qty: 1, mutate: func(i *InventoryItem) { i.IsSuppliable = false }, wantErr: shared.ErrNoStockAvailable},
		{name: "inactive", qty: 1, mutate: func(i *InventoryItem) { i.IsActive = false }, wantErr: shared.ErrNoStockAvailable},
		{name: "zero quantity", qty: 0, wantErr: shared.ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := createTestItem(t, 5, 5)
			if tt.mutate != nil {
				tt.mutate(item)
			}
			err := item.CheckPurchasable(tt.qty)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestInventoryItem_CheckConsistency(t *testing.T) {
	item := createTestItem(t, 2, 3)
	assert.NoError(t, item.CheckConsistency())

	item.ActualStock = 1
	assert.True(t, errors.Is(item.CheckConsistency(), shared.ErrInvalidStockValue))
}

func TestInventoryItem_Toggles(t *testing.T) {
	item := createTestItem(t, 1, 1)
	item.Deactivate()
	assert.False(t, item.IsActive)
	item.SetSuppliable(false)
	assert.False(t, item.IsSuppliable)
	assert.Equal(t, 3, item.Version)
	item.SetSuppliable(false)
	assert.Equal(t, 3, item.Version)
}
