package inventory

import (
	"context"
	"fmt"

	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StockAlert is the low-stock notification sent when a counter hits zero
type StockAlert struct {
	InventoryItemID string `json:"inventory_item_id"`
	SKU             string `json:"sku"`
	Counter         string `json:"counter"`
	AlertType       string `json:"alert_type"`
}

// StockAlertNotifier delivers stock alerts to operators
type StockAlertNotifier interface {
	SendAlert(ctx context.Context, alert StockAlert) error
}

// StockDepletedHandler turns StockDepleted events into operator alerts
type StockDepletedHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
}

// NewStockDepletedHandler creates a new handler for stock depleted events
func NewStockDepletedHandler(logger *zap.Logger) *StockDepletedHandler {
	return &StockDepletedHandler{logger: logger}
}

// WithNotifier sets the notifier for sending alerts
func (h *StockDepletedHandler) WithNotifier(notifier StockAlertNotifier) *StockDepletedHandler {
	h.notifier = notifier
	return h
}

func (h *StockDepletedHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockDepleted}
}

func (h *StockDepletedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	depleted, ok := event.(*inventory.StockDepletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeStockDepleted, event.EventType())
	}

	h.logger.Warn("stock depleted",
		zap.String("inventory_item_id", depleted.InventoryItemID.String()),
		zap.String("sku", depleted.SKU),
		zap.String("counter", string(depleted.Counter)),
	)

	if h.notifier == nil {
		return nil
	}
	alert := StockAlert{
		InventoryItemID: depleted.InventoryItemID.String(),
		SKU:             depleted.SKU,
		Counter:         string(depleted.Counter),
		AlertType:       "out_of_stock",
	}
	if err := h.notifier.SendAlert(ctx, alert); err != nil {
		// notification failure must not fail event delivery
		h.logger.Error("failed to send stock alert", zap.String("sku", depleted.SKU), zap.Error(err))
	}
	return nil
}

var _ shared.EventHandler = (*StockDepletedHandler)(nil)

// LoggingStockAlertNotifier logs alerts instead of delivering them
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{logger: logger}
}

func (n *LoggingStockAlertNotifier) SendAlert(_ context.Context, alert StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.String("sku", alert.SKU),
		zap.String("counter", alert.Counter),
	)
	return nil
}
