package event

import (
	"context"

	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LogHandler writes one debug line per committed domain event
type LogHandler struct {
	logger *zap.Logger
}

// NewLogHandler creates a LogHandler
func NewLogHandler(logger *zap.Logger) *LogHandler {
	return &LogHandler{logger: logger.Named("domain_events")}
}

// EventTypes returns nil: the handler receives every event
func (h *LogHandler) EventTypes() []string { return nil }

// Handle implements shared.EventHandler
func (h *LogHandler) Handle(_ context.Context, ev shared.DomainEvent) error {
	h.logger.Debug("domain event",
		zap.String("event_type", ev.EventType()),
		zap.String("event_id", ev.EventID().String()),
		zap.String("aggregate_type", ev.AggregateType()),
		zap.String("aggregate_id", ev.AggregateID().String()),
	)
	return nil
}

var _ shared.EventHandler = (*LogHandler)(nil)
