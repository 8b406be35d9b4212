package messaging

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockMessageWriter struct {
	mock.Mock
}

func (m *MockMessageWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockMessageWriter) Close() error {
	return m.Called().Error(0)
}

func depletionEvents(t *testing.T) *inventory.InventoryItem {
	t.Helper()
	item, err := inventory.NewInventoryItem("kfk-1", uuid.New(), decimal.NewFromInt(3), 1, 1)
	require.NoError(t, err)
	_, err = item.AdjustAvailable(1, inventory.Decrease)
	require.NoError(t, err)
	return item
}

func TestKafkaRelay_Handle(t *testing.T) {
	serializer := event.NewDomainSerializer()

	t.Run("writes keyed message with headers", func(t *testing.T) {
		item := depletionEvents(t)
		events := item.PullDomainEvents()

		w := new(MockMessageWriter)
		var written []kafka.Message
		w.On("WriteMessages", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { written = append(written, args.Get(1).([]kafka.Message)...) }).
			Return(nil)

		relay := NewKafkaRelay(w, serializer, time.Second, zap.NewNop())
		assert.Nil(t, relay.EventTypes())
		for _, ev := range events {
			require.NoError(t, relay.Handle(context.Background(), ev))
		}

		require.Len(t, written, 2)
		for _, msg := range written {
			assert.Equal(t, item.ID.String(), string(msg.Key))
		}

		decoded, err := decodeMessage(serializer, written[1])
		require.NoError(t, err)
		depleted, ok := decoded.(*inventory.StockDepletedEvent)
		require.True(t, ok)
		assert.Equal(t, "KFK-1", depleted.SKU)
		w.AssertExpectations(t)
	})

	t.Run("write failure is returned", func(t *testing.T) {
		item := depletionEvents(t)
		w := new(MockMessageWriter)
		w.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("broker down"))

		relay := NewKafkaRelay(w, serializer, 0, nil)
		err := relay.Handle(context.Background(), item.PullDomainEvents()[0])
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broker down")
	})

	t.Run("timeout bounds the write", func(t *testing.T) {
		item := depletionEvents(t)
		w := new(MockMessageWriter)
		w.On("WriteMessages", mock.MatchedBy(func(ctx context.Context) bool {
			_, has := ctx.Deadline()
			return has
		}), mock.Anything).Return(nil)

		relay := NewKafkaRelay(w, serializer, 50*time.Millisecond, nil)
		require.NoError(t, relay.Handle(context.Background(), item.PullDomainEvents()[0]))
		w.AssertExpectations(t)
	})

	t.Run("close closes writer", func(t *testing.T) {
		w := new(MockMessageWriter)
		w.On("Close").Return(nil)
		require.NoError(t, NewKafkaRelay(w, serializer, 0, nil).Close())
		w.AssertExpectations(t)
	})
}

// decodeMessage reads a relayed message back into its domain event
func decodeMessage(serializer *event.Serializer, msg kafka.Message) (shared.DomainEvent, error) {
	for _, h := range msg.Headers {
		if h.Key == HeaderEventType {
			return serializer.Deserialize(string(h.Value), msg.Value)
		}
	}
	return nil, fmt.Errorf("message at offset %d has no %s header", msg.Offset, HeaderEventType)
}

func TestRelayedMessage_RequiresEventTypeHeader(t *testing.T) {
	_, err := decodeMessage(event.NewDomainSerializer(), kafka.Message{Value: []byte(`{}`)})
	assert.Error(t, err)
}

func TestNewKafkaWriter(t *testing.T) {
	w := NewKafkaWriter(config.KafkaConfig{
		Brokers:      []string{"localhost:9092"},
		Topic:        "storefront.domain-events",
		WriteTimeout: time.Second,
	})
	assert.Equal(t, "storefront.domain-events", w.Topic)
	assert.Equal(t, time.Second, w.WriteTimeout)
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
}
