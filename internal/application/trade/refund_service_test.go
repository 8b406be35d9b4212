package trade

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newRefundService(t *testing.T, f *tradeFixture) *RefundService {
	return NewRefundService(f.scope, f.ledger, zaptest.NewLogger(t))
}

func TestRefundService_RefundLine(t *testing.T) {
	ctx := context.Background()

	t.Run("restores both counters and rejects a second refund", func(t *testing.T) {
		f := newTradeFixture(t)
		x := f.stock(t, "X", 50, 6, 6)
		order := f.paidOrder(t, "TX-1", line(x, 4))
		svc := newRefundService(t, f)
		lineID := order.Lines[0].ID

		resp, err := svc.RefundLine(ctx, lineID, "damaged")
		require.NoError(t, err)
		assert.Equal(t, 4, resp.Quantity)
		assert.Equal(t, lineID, resp.OrderLineID)
		assert.Equal(t, 10, x.item.AvailableStock)
		assert.Equal(t, 10, x.item.ActualStock)

		_, err = svc.RefundLine(ctx, lineID, "damaged again")
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrFailedRefund))
		assert.True(t, errors.Is(err, shared.ErrAlreadyRefunded))
		assert.Equal(t, 10, x.item.AvailableStock)
		assert.Equal(t, 10, x.item.ActualStock)
	})

	t.Run("other lines and order status are untouched", func(t *testing.T) {
		f := newTradeFixture(t)
		x := f.stock(t, "X", 50, 6, 6)
		y := f.stock(t, "Y", 20, 3, 3)
		order := f.paidOrder(t, "TX-2", line(x, 4), line(y, 2))

		_, err := newRefundService(t, f).RefundLine(ctx, order.Lines[0].ID, "wrong size")
		require.NoError(t, err)
		assert.Equal(t, 3, y.item.AvailableStock)
		assert.Equal(t, 3, y.item.ActualStock)
		assert.Equal(t, trade.OrderStatusProcessing, order.Status)
		f.scope.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		assert.Len(t, f.publisher.GetEventsByType(trade.EventTypeOrderLineRefunded), 1)
	})

	t.Run("refunding the last line cancels the order", func(t *testing.T) {
		f := newTradeFixture(t)
		x := f.stock(t, "X", 50, 6, 6)
		order := f.paidOrder(t, "TX-3", line(x, 1))

		_, err := newRefundService(t, f).RefundLine(ctx, order.Lines[0].ID, "changed mind")
		require.NoError(t, err)
		assert.Equal(t, trade.OrderStatusCancelled, order.Status)
		assert.Equal(t, fullyRefundedReason, order.CancelReason)
		assert.Len(t, f.publisher.GetEventsByType(trade.EventTypeOrderCancelled), 1)
	})

	t.Run("unpaid order cannot be refunded", func(t *testing.T) {
		f := newTradeFixture(t)
		x := f.stock(t, "X", 50, 6, 6)
		order := f.waitingOrder(t, "TX-4", line(x, 1))

		_, err := newRefundService(t, f).RefundLine(ctx, order.Lines[0].ID, "no")
		assert.True(t, errors.Is(err, shared.ErrFailedRefund))
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
		assert.Equal(t, 6, x.item.AvailableStock)
	})

	t.Run("blank reason", func(t *testing.T) {
		f := newTradeFixture(t)
		_, err := newRefundService(t, f).RefundLine(ctx, uuid.New(), "  ")
		assert.True(t, errors.Is(err, shared.ErrInvalidReason))
		assert.False(t, errors.Is(err, shared.ErrFailedRefund))
	})

	t.Run("unknown line", func(t *testing.T) {
		f := newTradeFixture(t)
		lineID := uuid.New()
		f.scope.orders.On("FindByLineID", mock.Anything, lineID).Return(nil, shared.ErrNotFound)

		_, err := newRefundService(t, f).RefundLine(ctx, lineID, "lost")
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestRefundService_RefundOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("refunds every remaining line", func(t *testing.T) {
		f := newTradeFixture(t)
		x := f.stock(t, "X", 50, 6, 6)
		y := f.stock(t, "Y", 20, 3, 3)
		order := f.paidOrder(t, "TX-1", line(x, 4), line(y, 2))
		svc := newRefundService(t, f)

		_, err := svc.RefundLine(ctx, order.Lines[0].ID, "first")
		require.NoError(t, err)

		refunds, err := svc.RefundOrder(ctx, order.ID, "rest")
		require.NoError(t, err)
		require.Len(t, refunds, 1)
		assert.Equal(t, order.Lines[1].ID, refunds[0].OrderLineID)
		assert.Equal(t, 5, y.item.AvailableStock)
		assert.Equal(t, 10, x.item.AvailableStock)
		assert.Equal(t, trade.OrderStatusCancelled, order.Status)
	})

	t.Run("nothing left to refund", func(t *testing.T) {
		f := newTradeFixture(t)
		x := f.stock(t, "X", 50, 6, 6)
		y := f.stock(t, "Y", 20, 3, 3)
		order := f.paidOrder(t, "TX-2", line(x, 1), line(y, 1))
		for _, l := range order.Lines {
			require.NoError(t, f.scope.refunds.Create(ctx, &trade.Refund{OrderID: order.ID, OrderLineID: l.ID}))
		}

		_, err := newRefundService(t, f).RefundOrder(ctx, order.ID, "again")
		assert.True(t, errors.Is(err, shared.ErrFailedRefund))
		assert.True(t, errors.Is(err, shared.ErrAlreadyRefunded))
	})

	t.Run("a failing line fails the whole call", func(t *testing.T) {
		f := newTradeFixture(t)
		x := f.stock(t, "X", 50, 6, 6)
		order := f.paidOrder(t, "TX-3", line(x, 1))
		f.scope.refunds.failOn = errors.New("connection reset")

		refunds, err := newRefundService(t, f).RefundOrder(ctx, order.ID, "broken")
		assert.Nil(t, refunds)
		assert.True(t, errors.Is(err, shared.ErrFailedRefund))
		assert.Equal(t, 6, x.item.AvailableStock)
		assert.Empty(t, f.publisher.GetEventsByType(trade.EventTypeOrderLineRefunded))
	})
}
