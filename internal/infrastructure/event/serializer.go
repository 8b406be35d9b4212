package event

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
)

// Serializer converts domain events to JSON and back. Decoding needs the
// event type, which travels beside the payload (a message header).
type Serializer struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
}

// NewSerializer returns a serializer with no registered types
func NewSerializer() *Serializer {
	return &Serializer{types: make(map[string]reflect.Type)}
}

// NewDomainSerializer returns a serializer that knows every order and stock event
func NewDomainSerializer() *Serializer {
	s := NewSerializer()
	s.Register(trade.EventTypeOrderCreated, &trade.OrderCreatedEvent{})
	s.Register(trade.EventTypeOrderPaid, &trade.OrderPaidEvent{})
	s.Register(trade.EventTypeOrderCancelled, &trade.OrderCancelledEvent{})
	s.Register(trade.EventTypeOrderStatusChanged, &trade.OrderStatusChangedEvent{})
	s.Register(trade.EventTypeOrderLineRefunded, &trade.OrderLineRefundedEvent{})
	s.Register(inventory.EventTypeStockAdjusted, &inventory.StockAdjustedEvent{})
	s.Register(inventory.EventTypeStockDepleted, &inventory.StockDepletedEvent{})
	return s
}

// Register associates eventType with the concrete type of prototype
func (s *Serializer) Register(eventType string, prototype shared.DomainEvent) {
	t := reflect.TypeOf(prototype)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	s.mu.Lock()
	s.types[eventType] = t
	s.mu.Unlock()
}

// Serialize encodes ev as JSON
func (s *Serializer) Serialize(ev shared.DomainEvent) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", ev.EventType(), err)
	}
	return data, nil
}

// Deserialize decodes data into a new value of the type registered for eventType
func (s *Serializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	t, ok := s.types[eventType]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}

	ptr := reflect.New(t).Interface()
	if err := json.Unmarshal(data, ptr); err != nil {
		return nil, fmt.Errorf("deserialize %s: %w", eventType, err)
	}
	ev, ok := ptr.(shared.DomainEvent)
	if !ok {
		return nil, fmt.Errorf("%s does not implement DomainEvent", t)
	}
	return ev, nil
}

// IsRegistered reports whether eventType can be deserialized
func (s *Serializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.types[eventType]
	return ok
}
