package trade

import (
	"context"
	"errors"
	"time"

	appinventory "github.com/storefront/backend/internal/application/inventory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// CheckoutService turns a cart into a waiting order in one transaction
type CheckoutService struct {
	scope  TransactionScope
	ledger *appinventory.StockLedger
	logger *zap.Logger
	now    func() time.Time
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(scope TransactionScope, ledger *appinventory.StockLedger, logger *zap.Logger) *CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{
		scope:  scope,
		ledger: ledger,
		logger: logger,
		now:    time.Now,
	}
}

// Checkout creates an order from the cart: every line is re-verified for
// availability and stock, the order and its line snapshots are written and
// the cart is emptied. Stock counters are not touched until payment is
// confirmed. Any failure leaves the cart and orders unchanged and is
// reported as ErrOrderCreationFailed wrapping the cause.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "create_order")
	defer span.End()
	telemetry.SetAttributes(span,
		"cart_id", req.CartID.String(),
		telemetry.SpanAttrTransactionRef, req.TransactionRef,
	)

	var order *trade.Order
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = s.assemble(ctx, repos, req)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		fields := []zap.Field{
			zap.String("cart_id", req.CartID.String()),
			zap.String("transaction_ref", req.TransactionRef),
			zap.Error(err),
		}
		if kind, _ := shared.KindOf(err); kind == shared.KindConflict || kind == shared.KindValidation || kind == shared.KindState {
			s.logger.Warn("checkout rejected", fields...)
		} else {
			s.logger.Error("checkout failed", fields...)
		}
		return nil, shared.ErrOrderCreationFailed.Wrap(err)
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", order.UserID.String()),
		zap.String("transaction_ref", order.TransactionRef),
		zap.Int("lines", len(order.Lines)),
	)
	telemetry.SetAttribute(span, telemetry.SpanAttrOrderID, order.ID.String())
	s.ledger.PublishEvents(ctx, order.PullDomainEvents())

	resp := ToOrderResponse(order)
	return &resp, nil
}

func (s *CheckoutService) assemble(ctx context.Context, repos TransactionalRepositories, req CheckoutRequest) (*trade.Order, error) {
	cart, err := repos.CartRepo().FindByIDForUpdate(ctx, req.CartID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, shared.ErrEmptyCart
	}

	exists, err := repos.OrderRepo().ExistsByTransactionRef(ctx, req.TransactionRef)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.ErrDuplicateTransactionRef
	}

	address, err := repos.AddressRepo().FindByID(ctx, req.AddressID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound.WithMessage("Address not found")
		}
		return nil, err
	}
	if !address.BelongsTo(cart.UserID) {
		return nil, shared.ErrNotFound.WithMessage("Address not found")
	}

	var voucher *trade.Voucher
	if req.VoucherID != nil {
		voucher, err = repos.VoucherRepo().FindByID(ctx, *req.VoucherID)
		if err != nil {
			return nil, err
		}
		if err := voucher.CheckUsable(s.now()); err != nil {
			return nil, err
		}
	}

	order, err := trade.NewOrder(cart.UserID, req.TransactionRef, address.ID, req.Footnote)
	if err != nil {
		return nil, err
	}
	if voucher != nil {
		order.ApplyVoucher(voucher.ID)
	}
	if req.LogisticID != nil {
		order.AssignLogistic(*req.LogisticID)
	}

	for _, line := range cart.Lines {
		item, err := s.ledger.VerifyPurchasableWithin(ctx, repos, line.SKU, line.Quantity)
		if err != nil {
			return nil, err
		}
		unitCost := item.Price
		if voucher != nil {
			unitCost = voucher.Apply(item.Price)
		}
		if _, err := order.AddLine(item.ID, item.SKU, line.Quantity, unitCost, item.Price, order.VoucherID); err != nil {
			return nil, err
		}
	}
	if err := order.Place(); err != nil {
		return nil, err
	}

	if err := repos.OrderRepo().Create(ctx, order); err != nil {
		return nil, err
	}
	cart.Clear()
	if err := repos.CartRepo().Save(ctx, cart); err != nil {
		return nil, err
	}
	return order, nil
}
