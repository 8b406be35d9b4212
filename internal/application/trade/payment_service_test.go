package trade

import (
	"context"
	"errors"
	"testing"

	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newPaymentService(t *testing.T, f *tradeFixture) *PaymentService {
	return NewPaymentService(f.scope, f.scope, f.ledger, zaptest.NewLogger(t))
}

func TestParseGatewayStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want GatewayStatus
	}{
		{"success", GatewayStatusSuccess},
		{" SUCCESS ", GatewayStatusSuccess},
		{"failed", GatewayStatusFailure},
		{"timeout", GatewayStatusFailure},
		{"cancelled", GatewayStatusFailure},
		{"pending", GatewayStatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseGatewayStatus(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseGatewayStatus("maybe")
	assert.True(t, errors.Is(err, shared.ErrInvalidGatewayStatus))
}

func TestPaymentService_ConfirmPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("success consumes both counters exactly once", func(t *testing.T) {
		f := newTradeFixture(t)
		x := f.stock(t, "X", 50, 10, 10)
		order := f.waitingOrder(t, "TX-1", line(x, 4))
		svc := newPaymentService(t, f)

		resp, err := svc.ConfirmPayment(ctx, "TX-1", "success")
		require.NoError(t, err)
		assert.Equal(t, string(trade.OrderStatusProcessing), resp.Status)
		assert.NotNil(t, resp.PaidAt)
		assert.Equal(t, 6, x.item.AvailableStock)
		assert.Equal(t, 6, x.item.ActualStock)
		assert.Len(t, f.publisher.GetEventsByType(trade.EventTypeOrderPaid), 1)
		assert.Len(t, f.publisher.GetEventsByType(inventory.EventTypeStockAdjusted), 2)

		// replayed callback without an idempotency store: the status guard holds
		resp, err = svc.ConfirmPayment(ctx, "TX-1", "success")
		require.NoError(t, err)
		assert.Equal(t, string(trade.OrderStatusProcessing), resp.Status)
		assert.Equal(t, 6, x.item.AvailableStock)
		assert.Equal(t, 6, x.item.ActualStock)
		assert.Len(t, f.publisher.GetEventsByType(trade.EventTypeOrderPaid), 1)
		f.scope.orders.AssertNumberOfCalls(t, "SaveWithLock", 1)
		assert.Equal(t, trade.OrderStatusProcessing, order.Status)
	})

	t.Run("idempotency store short-circuits replays", func(t *testing.T) {
		f := newTradeFixture(t)
		x := f.stock(t, "X", 50, 10, 10)
		f.waitingOrder(t, "TX-2", line(x, 4))
		svc := newPaymentService(t, f)
		svc.SetIdempotencyStore(newMemoryIdempotencyStore(), shared.DefaultIdempotencyConfig())

		_, err := svc.ConfirmPayment(ctx, "TX-2", "success")
		require.NoError(t, err)
		resp, err := svc.ConfirmPayment(ctx, "TX-2", "success")
		require.NoError(t, err)

		assert.Equal(t, string(trade.OrderStatusProcessing), resp.Status)
		assert.Equal(t, 6, x.item.AvailableStock)
		f.scope.orders.AssertNumberOfCalls(t, "FindByTransactionRefForUpdate", 1)
		f.scope.orders.AssertNumberOfCalls(t, "FindByTransactionRef", 1)
	})

	t.Run("stock failure aborts finalization", func(t *testing.T) {
		f := newTradeFixture(t)
		x := f.stock(t, "X", 50, 10, 10)
		y := f.stock(t, "Y", 50, 1, 1)
		f.waitingOrder(t, "TX-3", line(x, 2), line(y, 4))

		_, err := newPaymentService(t, f).ConfirmPayment(ctx, "TX-3", "success")
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrOrderFinalizationFailed))
		assert.True(t, errors.Is(err, shared.ErrOutOfStock))
		assert.Equal(t, 1, y.item.AvailableStock)
		f.scope.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.GetEventsByType(trade.EventTypeOrderPaid))
	})

	t.Run("failure cancels a waiting order without stock change", func(t *testing.T) {
		f := newTradeFixture(t)
		x := f.stock(t, "X", 50, 10, 10)
		f.waitingOrder(t, "TX-4", line(x, 4))

		resp, err := newPaymentService(t, f).ConfirmPayment(ctx, "TX-4", "timeout")
		require.NoError(t, err)
		assert.Equal(t, string(trade.OrderStatusCancelled), resp.Status)
		assert.Equal(t, 10, x.item.AvailableStock)
		f.scope.items.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		assert.Len(t, f.publisher.GetEventsByType(trade.EventTypeOrderCancelled), 1)
	})

	t.Run("failure on a cancelled order is a no-op", func(t *testing.T) {
		f := newTradeFixture(t)
		x := f.stock(t, "X", 50, 10, 10)
		order := f.waitingOrder(t, "TX-5", line(x, 1))
		require.NoError(t, order.Cancel("user abandoned"))
		order.PullDomainEvents()

		resp, err := newPaymentService(t, f).ConfirmPayment(ctx, "TX-5", "failed")
		require.NoError(t, err)
		assert.Equal(t, string(trade.OrderStatusCancelled), resp.Status)
		f.scope.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("failure on a paid order is rejected", func(t *testing.T) {
		f := newTradeFixture(t)
		x := f.stock(t, "X", 50, 10, 10)
		f.paidOrder(t, "TX-6", line(x, 1))

		_, err := newPaymentService(t, f).ConfirmPayment(ctx, "TX-6", "failure")
		assert.True(t, errors.Is(err, shared.ErrOrderFinalizationFailed))
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})

	t.Run("pending changes nothing", func(t *testing.T) {
		f := newTradeFixture(t)
		x := f.stock(t, "X", 50, 10, 10)
		f.waitingOrder(t, "TX-7", line(x, 1))

		resp, err := newPaymentService(t, f).ConfirmPayment(ctx, "TX-7", "pending")
		require.NoError(t, err)
		assert.Equal(t, string(trade.OrderStatusWaiting), resp.Status)
		f.scope.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newTradeFixture(t)
		f.scope.orders.On("FindByTransactionRefForUpdate", mock.Anything, "NOPE").Return(nil, shared.ErrNotFound)

		_, err := newPaymentService(t, f).ConfirmPayment(ctx, "NOPE", "success")
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("input validation is not wrapped", func(t *testing.T) {
		f := newTradeFixture(t)
		svc := newPaymentService(t, f)

		_, err := svc.ConfirmPayment(ctx, " ", "success")
		assert.True(t, errors.Is(err, shared.ErrInvalidTransactionRef))
		assert.False(t, errors.Is(err, shared.ErrOrderFinalizationFailed))

		_, err = svc.ConfirmPayment(ctx, "TX", "unknown")
		assert.True(t, errors.Is(err, shared.ErrInvalidGatewayStatus))
	})
}

func TestPaymentService_AdvanceFulfillment(t *testing.T) {
	ctx := context.Background()

	t.Run("paid order ships", func(t *testing.T) {
		f := newTradeFixture(t)
		x := f.stock(t, "X", 50, 10, 10)
		order := f.paidOrder(t, "TX-1", line(x, 1))

		resp, err := newPaymentService(t, f).AdvanceFulfillment(ctx, order.ID, trade.OrderStatusShipped)
		require.NoError(t, err)
		assert.Equal(t, string(trade.OrderStatusShipped), resp.Status)
		assert.Len(t, f.publisher.GetEventsByType(trade.EventTypeOrderStatusChanged), 1)
	})

	t.Run("waiting order cannot ship", func(t *testing.T) {
		f := newTradeFixture(t)
		x := f.stock(t, "X", 50, 10, 10)
		order := f.waitingOrder(t, "TX-2", line(x, 1))

		_, err := newPaymentService(t, f).AdvanceFulfillment(ctx, order.ID, trade.OrderStatusShipped)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})

	t.Run("payment status is not a fulfillment step", func(t *testing.T) {
		f := newTradeFixture(t)
		x := f.stock(t, "X", 50, 10, 10)
		order := f.waitingOrder(t, "TX-3", line(x, 1))

		_, err := newPaymentService(t, f).AdvanceFulfillment(ctx, order.ID, trade.OrderStatusProcessing)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})
}
