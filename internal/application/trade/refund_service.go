package trade

import (
	"context"
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

const fullyRefundedReason = "all lines refunded"

// RefundService returns order lines to stock
type RefundService struct {
	scope  TransactionScope
	ledger *appinventory.StockLedger
	logger *zap.Logger
}

// NewRefundService creates a new RefundService
func NewRefundService(scope TransactionScope, ledger *appinventory.StockLedger, logger *zap.Logger) *RefundService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefundService{
		scope:  scope,
		ledger: ledger,
		logger: logger,
	}
}

// RefundLine records a refund for one line of a paid order and restores its
// quantity to both stock counters. Other lines of the order are untouched.
// When the last unrefunded line is returned the order is cancelled.
func (s *RefundService) RefundLine(ctx context.Context, orderLineID uuid.UUID, reason string) (*RefundResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, shared.ErrInvalidReason
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "refund", "refund_line")
	defer span.End()
	telemetry.SetAttributes(span, "order_line_id", orderLineID.String())

	var (
		order  *trade.Order
		refund *trade.Refund
		events []shared.DomainEvent
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		owner, err := repos.OrderRepo().FindByLineID(ctx, orderLineID)
		if err != nil {
			return err
		}
		order, err = repos.OrderRepo().FindByIDForUpdate(ctx, owner.ID)
		if err != nil {
			return err
		}
		var itemEvents []shared.DomainEvent
		refund, itemEvents, err = s.refundWithin(ctx, repos, order, orderLineID, reason)
		if err != nil {
			return err
		}
		if err := s.cancelIfFullyRefunded(ctx, repos, order); err != nil {
			return err
		}
		events = append(order.PullDomainEvents(), itemEvents...)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logFailure(order, err, zap.String("order_line_id", orderLineID.String()))
		return nil, shared.ErrFailedRefund.Wrap(err)
	}

	s.logger.Info("order line refunded",
		zap.String("order_id", order.ID.String()),
		zap.String("order_line_id", orderLineID.String()),
		zap.String("sku", refund.SKU),
		zap.Int("quantity", refund.Quantity),
	)
	s.ledger.PublishEvents(ctx, events)

	resp := ToRefundResponse(refund)
	return &resp, nil
}

// RefundOrder refunds every line of the order not refunded yet. All lines are
// refunded in one transaction: a failure on any line rolls back the refunds
// of the lines before it.
func (s *RefundService) RefundOrder(ctx context.Context, orderID uuid.UUID, reason string) ([]RefundResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, shared.ErrInvalidReason
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "refund", "refund_order")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrOrderID, orderID.String())

	var (
		order   *trade.Order
		refunds []*trade.Refund
		events  []shared.DomainEvent
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		refunded, err := s.refundedLines(ctx, repos, order.ID)
		if err != nil {
			return err
		}

		var itemEvents []shared.DomainEvent
		for _, line := range order.Lines {
			if refunded[line.ID] {
				continue
			}
			refund, evs, err := s.refundWithin(ctx, repos, order, line.ID, reason)
			if err != nil {
				return err
			}
			refunds = append(refunds, refund)
			itemEvents = append(itemEvents, evs...)
		}
		if len(refunds) == 0 {
			return shared.ErrAlreadyRefunded.WithMessage("Every line of the order has already been refunded")
		}
		if err := s.cancelIfFullyRefunded(ctx, repos, order); err != nil {
			return err
		}
		events = append(order.PullDomainEvents(), itemEvents...)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logFailure(order, err, zap.String("order_id", orderID.String()))
		return nil, shared.ErrFailedRefund.Wrap(err)
	}

	s.logger.Info("order refunded",
		zap.String("order_id", order.ID.String()),
		zap.Int("lines", len(refunds)),
	)
	s.ledger.PublishEvents(ctx, events)

	resp := make([]RefundResponse, len(refunds))
	for i, r := range refunds {
		resp[i] = ToRefundResponse(r)
	}
	return resp, nil
}

// refundWithin creates the refund for lineID and restores its stock: actual
// first, then available, so actual >= available holds after each step.
func (s *RefundService) refundWithin(ctx context.Context, repos TransactionalRepositories, order *trade.Order, lineID uuid.UUID, reason string) (*trade.Refund, []shared.DomainEvent, error) {
	done, err := repos.RefundRepo().ExistsForLine(ctx, lineID)
	if err != nil {
		return nil, nil, err
	}
	if done {
		return nil, nil, shared.ErrAlreadyRefunded
	}

	refund, err := order.RefundLine(lineID, reason)
	if err != nil {
		return nil, nil, err
	}
	if err := repos.RefundRepo().Create(ctx, refund); err != nil {
		return nil, nil, err
	}

	var events []shared.DomainEvent
	for _, counter := range []inventory.Counter{inventory.CounterActual, inventory.CounterAvailable} {
		res, err := s.ledger.ApplyWithin(ctx, repos, appinventory.Adjustment{
			SKU:       refund.SKU,
			Counter:   counter,
			Quantity:  refund.Quantity,
			Direction: inventory.Increase,
		})
		if err != nil {
			return nil, nil, err
		}
		events = append(events, res.Item.PullDomainEvents()...)
	}
	return refund, events, nil
}

func (s *RefundService) refundedLines(ctx context.Context, repos TransactionalRepositories, orderID uuid.UUID) (map[uuid.UUID]bool, error) {
	refunds, err := repos.RefundRepo().FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	refunded := make(map[uuid.UUID]bool, len(refunds))
	for _, r := range refunds {
		refunded[r.OrderLineID] = true
	}
	return refunded, nil
}

func (s *RefundService) cancelIfFullyRefunded(ctx context.Context, repos TransactionalRepositories, order *trade.Order) error {
	refunded, err := s.refundedLines(ctx, repos, order.ID)
	if err != nil {
		return err
	}
	for _, line := range order.Lines {
		if !refunded[line.ID] {
			return nil
		}
	}
	if err := order.Cancel(fullyRefundedReason); err != nil {
		return fmt.Errorf("cancel fully refunded order: %w", err)
	}
	return repos.OrderRepo().SaveWithLock(ctx, order)
}

func (s *RefundService) logFailure(order *trade.Order, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if order != nil {
		fields = append(fields,
			zap.String("user_id", order.UserID.String()),
			zap.String("transaction_ref", order.TransactionRef),
		)
	}
	if kind, _ := shared.KindOf(err); kind == shared.KindTransaction || kind == "" {
		s.logger.Error("refund failed", fields...)
		return
	}
	s.logger.Warn("refund rejected", fields...)
}
