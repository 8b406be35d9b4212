// Package messaging forwards committed domain events to Kafka.
package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"go.uber.org/zap"
)

// Message headers set on every relayed event
const (
	HeaderEventType     = "event-type"
	HeaderEventID       = "event-id"
	HeaderAggregateType = "aggregate-type"
)

// MessageWriter is the subset of *kafka.Writer the relay needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaRelay is a wildcard event handler that writes each event to a topic,
// keyed by aggregate ID so events of one order or item stay in one partition.
type KafkaRelay struct {
	writer       MessageWriter
	serializer   *event.Serializer
	writeTimeout time.Duration
	logger       *zap.Logger
}

// NewKafkaWriter builds a writer for cfg.Brokers and cfg.Topic
func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           cfg.WriteTimeout,
	}
}

// NewKafkaRelay creates a relay writing through w
func NewKafkaRelay(w MessageWriter, serializer *event.Serializer, writeTimeout time.Duration, logger *zap.Logger) *KafkaRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaRelay{
		writer:       w,
		serializer:   serializer,
		writeTimeout: writeTimeout,
		logger:       logger.Named("kafka_relay"),
	}
}

// EventTypes returns nil so the relay receives every event
func (r *KafkaRelay) EventTypes() []string { return nil }

// Handle serializes ev and writes it synchronously
func (r *KafkaRelay) Handle(ctx context.Context, ev shared.DomainEvent) error {
	msg, err := r.toMessage(ev)
	if err != nil {
		return err
	}

	if r.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.writeTimeout)
		defer cancel()
	}
	if err := r.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("relay %s %s: %w", ev.EventType(), ev.EventID(), err)
	}
	r.logger.Debug("event relayed",
		zap.String("event_type", ev.EventType()),
		zap.String("aggregate_id", ev.AggregateID().String()),
	)
	return nil
}

// Close flushes and closes the writer
func (r *KafkaRelay) Close() error {
	return r.writer.Close()
}

func (r *KafkaRelay) toMessage(ev shared.DomainEvent) (kafka.Message, error) {
	payload, err := r.serializer.Serialize(ev)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(ev.AggregateID().String()),
		Value: payload,
		Time:  ev.OccurredAt(),
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(ev.EventType())},
			{Key: HeaderEventID, Value: []byte(ev.EventID().String())},
			{Key: HeaderAggregateType, Value: []byte(ev.AggregateType())},
		},
	}, nil
}

var _ shared.EventHandler = (*KafkaRelay)(nil)
