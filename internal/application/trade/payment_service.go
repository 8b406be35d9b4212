package trade

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	appinventory "github.com/storefront/backend/internal/application/inventory"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// GatewayStatus is the payment outcome reported by the bank gateway
type GatewayStatus string

const (
	GatewayStatusSuccess GatewayStatus = "success"
	GatewayStatusFailure GatewayStatus = "failure"
	GatewayStatusPending GatewayStatus = "pending"
)

// ParseGatewayStatus maps the gateway's wording onto a GatewayStatus
func ParseGatewayStatus(raw string) (GatewayStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "success", "succeeded", "paid":
		return GatewayStatusSuccess, nil
	case "failure", "failed", "cancelled", "canceled", "timeout", "expired":
		return GatewayStatusFailure, nil
	case "pending", "waiting", "processing":
		return GatewayStatusPending, nil
	}
	return "", shared.ErrInvalidGatewayStatus.WithMessage(fmt.Sprintf("unknown gateway status %q", raw))
}

// PaymentService drives orders through payment confirmation and fulfillment
type PaymentService struct {
	scope       TransactionScope
	repos       TransactionalRepositories
	ledger      *appinventory.StockLedger
	idempotency shared.IdempotencyStore
	idemConfig  shared.IdempotencyConfig
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(scope TransactionScope, repos TransactionalRepositories, ledger *appinventory.StockLedger, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		scope:      scope,
		repos:      repos,
		ledger:     ledger,
		idemConfig: shared.DefaultIdempotencyConfig(),
		logger:     logger,
	}
}

// SetIdempotencyStore enables short-circuiting of replayed gateway callbacks
func (s *PaymentService) SetIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) {
	s.idempotency = store
	s.idemConfig = cfg
}

func callbackKey(ref string, status GatewayStatus) string {
	return "payment:" + ref + ":" + string(status)
}

// ConfirmPayment applies a gateway outcome to the order identified by
// transactionRef. On success a waiting order moves to processing and both
// stock counters of every line are decremented in the same transaction; a
// repeated success is a no-op. On failure a waiting order is cancelled
// without stock changes. Pending leaves the order untouched.
func (s *PaymentService) ConfirmPayment(ctx context.Context, transactionRef, gatewayStatus string) (*OrderResponse, error) {
	ref := strings.TrimSpace(transactionRef)
	if ref == "" {
		return nil, shared.ErrInvalidTransactionRef
	}
	status, err := ParseGatewayStatus(gatewayStatus)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "confirm")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTransactionRef, ref,
		telemetry.SpanAttrPaymentStatus, string(status),
	)

	if s.replayed(ctx, ref, status) {
		s.logger.Debug("payment callback already processed",
			zap.String("transaction_ref", ref),
			zap.String("status", string(status)),
		)
		order, err := s.repos.OrderRepo().FindByTransactionRef(ctx, ref)
		if err != nil {
			return nil, err
		}
		resp := ToOrderResponse(order)
		return &resp, nil
	}

	var (
		order  *trade.Order
		events []shared.DomainEvent
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByTransactionRefForUpdate(ctx, ref)
		if err != nil {
			return err
		}
		switch status {
		case GatewayStatusSuccess:
			events, err = s.finalize(ctx, repos, order)
		case GatewayStatusFailure:
			events, err = s.cancelUnpaid(ctx, repos, order)
		}
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		fields := []zap.Field{
			zap.String("transaction_ref", ref),
			zap.String("status", string(status)),
			zap.Error(err),
		}
		if order != nil {
			fields = append(fields, zap.String("user_id", order.UserID.String()), zap.String("order_id", order.ID.String()))
		}
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("payment callback for unknown order", fields...)
		} else {
			s.logger.Error("payment confirmation failed", fields...)
		}
		return nil, shared.ErrOrderFinalizationFailed.Wrap(err)
	}

	if status != GatewayStatusPending {
		s.markProcessed(ctx, ref, status)
	}
	s.ledger.PublishEvents(ctx, events)

	resp := ToOrderResponse(order)
	return &resp, nil
}

// finalize marks the order paid and consumes its stock. Returns the events
// to publish after commit.
func (s *PaymentService) finalize(ctx context.Context, repos TransactionalRepositories, order *trade.Order) ([]shared.DomainEvent, error) {
	if order.Status.IsPaid() {
		s.logger.Info("payment already confirmed",
			zap.String("order_id", order.ID.String()),
			zap.String("status", order.Status.String()),
		)
		return nil, nil
	}
	if err := order.MarkPaid(); err != nil {
		return nil, err
	}

	var events []shared.DomainEvent
	for _, line := range order.Lines {
		for _, counter := range []inventory.Counter{inventory.CounterAvailable, inventory.CounterActual} {
			res, err := s.ledger.ApplyWithin(ctx, repos, appinventory.Adjustment{
				SKU:       line.SKU,
				Counter:   counter,
				Quantity:  line.Quantity,
				Direction: inventory.Decrease,
			})
			if err != nil {
				return nil, err
			}
			events = append(events, res.Item.PullDomainEvents()...)
		}
	}

	if err := repos.OrderRepo().SaveWithLock(ctx, order); err != nil {
		return nil, err
	}
	s.logger.Info("payment confirmed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", order.UserID.String()),
		zap.String("transaction_ref", order.TransactionRef),
	)
	return append(order.PullDomainEvents(), events...), nil
}

func (s *PaymentService) cancelUnpaid(ctx context.Context, repos TransactionalRepositories, order *trade.Order) ([]shared.DomainEvent, error) {
	if order.Status == trade.OrderStatusCancelled {
		return nil, nil
	}
	if !order.Status.IsAwaitingPayment() {
		return nil, shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("gateway reported failure for order in %s status", order.Status))
	}
	if err := order.Cancel("payment failed"); err != nil {
		return nil, err
	}
	if err := repos.OrderRepo().SaveWithLock(ctx, order); err != nil {
		return nil, err
	}
	s.logger.Info("order cancelled after failed payment",
		zap.String("order_id", order.ID.String()),
		zap.String("transaction_ref", order.TransactionRef),
	)
	return order.PullDomainEvents(), nil
}

func (s *PaymentService) replayed(ctx context.Context, ref string, status GatewayStatus) bool {
	if s.idempotency == nil || !s.idemConfig.Enabled || status == GatewayStatusPending {
		return false
	}
	processed, err := s.idempotency.IsProcessed(ctx, callbackKey(ref, status))
	if err != nil {
		// the row lock and status check still guard correctness
		s.logger.Warn("idempotency lookup failed", zap.String("transaction_ref", ref), zap.Error(err))
		return false
	}
	return processed
}

func (s *PaymentService) markProcessed(ctx context.Context, ref string, status GatewayStatus) {
	if s.idempotency == nil || !s.idemConfig.Enabled {
		return
	}
	if _, err := s.idempotency.MarkProcessed(ctx, callbackKey(ref, status), s.idemConfig.TTL); err != nil {
		s.logger.Warn("failed to record processed callback", zap.String("transaction_ref", ref), zap.Error(err))
	}
}

// AdvanceFulfillment applies a logistics status change to a paid order
func (s *PaymentService) AdvanceFulfillment(ctx context.Context, orderID uuid.UUID, target trade.OrderStatus) (*OrderResponse, error) {
	if !target.IsValid() {
		return nil, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("unknown order status %q", target))
	}

	var order *trade.Order
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := order.AdvanceFulfillment(target); err != nil {
			return err
		}
		return repos.OrderRepo().SaveWithLock(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order status advanced",
		zap.String("order_id", order.ID.String()),
		zap.String("status", order.Status.String()),
	)
	s.ledger.PublishEvents(ctx, order.PullDomainEvents())
	resp := ToOrderResponse(order)
	return &resp, nil
}
