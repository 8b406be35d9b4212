package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	appinventory "github.com/storefront/backend/internal/application/inventory"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// CartService manages cart contents. Every mutation locks the cart row so
// concurrent additions of the same item merge into one line.
type CartService struct {
	scope  TransactionScope
	repos  TransactionalRepositories
	ledger *appinventory.StockLedger
	logger *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(scope TransactionScope, repos TransactionalRepositories, ledger *appinventory.StockLedger, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		scope:  scope,
		repos:  repos,
		ledger: ledger,
		logger: logger,
	}
}

// GetCart returns the cart with its lines
func (s *CartService) GetCart(ctx context.Context, cartID uuid.UUID) (*CartResponse, error) {
	cart, err := s.repos.CartRepo().FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	resp := ToCartResponse(cart)
	return &resp, nil
}

// GetOrCreateCartForUser returns the user's cart, creating it on first use.
// Losing a creation race to another request returns the winner's cart.
func (s *CartService) GetOrCreateCartForUser(ctx context.Context, userID uuid.UUID) (*CartResponse, error) {
	cart, err := s.repos.CartRepo().FindByUserID(ctx, userID)
	if err == nil {
		resp := ToCartResponse(cart)
		return &resp, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	cart, err = trade.NewCart(userID)
	if err != nil {
		return nil, err
	}
	if err := s.repos.CartRepo().Save(ctx, cart); err != nil {
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, err
		}
		// a concurrent first request created the cart
		cart, err = s.repos.CartRepo().FindByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
	}
	resp := ToCartResponse(cart)
	return &resp, nil
}

// AddToCart adds quantity of sku to the cart, merging with an existing line.
// The item must be available and able to supply the merged quantity.
func (s *CartService) AddToCart(ctx context.Context, cartID uuid.UUID, sku string, quantity int) (*CartLineResponse, error) {
	if quantity < 1 {
		return nil, shared.ErrInvalidQuantity
	}
	sku = inventory.NormalizeSKU(sku)

	var resp CartLineResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		cart, err := repos.CartRepo().FindByIDForUpdate(ctx, cartID)
		if err != nil {
			return err
		}

		wanted := quantity
		if existing, ok := cart.FindLineBySKU(sku); ok {
			wanted += existing.Quantity
		}
		item, err := s.ledger.VerifyPurchasableWithin(ctx, repos, sku, wanted)
		if err != nil {
			return err
		}

		line, err := cart.AddLine(item.ID, item.SKU, quantity)
		if err != nil {
			return err
		}
		if err := repos.CartRepo().Save(ctx, cart); err != nil {
			return err
		}
		resp = toCartLineResponse(line)
		return nil
	})
	if err != nil {
		s.logger.Info("add to cart rejected",
			zap.String("cart_id", cartID.String()),
			zap.String("sku", sku),
			zap.Int("quantity", quantity),
			zap.Error(err),
		)
		return nil, err
	}
	return &resp, nil
}

// RemoveFromCart removes the line holding sku
func (s *CartService) RemoveFromCart(ctx context.Context, cartID uuid.UUID, sku string) error {
	sku = inventory.NormalizeSKU(sku)
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		cart, err := repos.CartRepo().FindByIDForUpdate(ctx, cartID)
		if err != nil {
			return err
		}
		if _, err := cart.RemoveLine(sku); err != nil {
			return err
		}
		return repos.CartRepo().Save(ctx, cart)
	})
}

// AdjustLineQuantity moves a line up or down by one. Incrementing re-checks
// stock for the new quantity; decrementing at one removes the line, in which
// case the returned line is nil.
func (s *CartService) AdjustLineQuantity(ctx context.Context, cartID, lineID uuid.UUID, increment int) (*CartLineResponse, error) {
	var resp *CartLineResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		cart, err := repos.CartRepo().FindByIDForUpdate(ctx, cartID)
		if err != nil {
			return err
		}

		line, removed, err := cart.AdjustLineQuantity(lineID, increment)
		if err != nil {
			return err
		}
		if !removed && increment > 0 {
			if _, err := s.ledger.VerifyPurchasableWithin(ctx, repos, line.SKU, line.Quantity); err != nil {
				return err
			}
		}
		if err := repos.CartRepo().Save(ctx, cart); err != nil {
			return err
		}
		if !removed {
			r := toCartLineResponse(line)
			resp = &r
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// SetQuantities overwrites the quantities of existing lines keyed by sku.
// Every requested quantity is checked against stock; nothing is saved unless
// all of them pass.
func (s *CartService) SetQuantities(ctx context.Context, cartID uuid.UUID, quantities map[string]int) (*CartResponse, error) {
	if len(quantities) == 0 {
		return nil, shared.ErrInvalidInput.WithMessage("No quantities given")
	}

	var resp CartResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		cart, err := repos.CartRepo().FindByIDForUpdate(ctx, cartID)
		if err != nil {
			return err
		}
		for rawSKU, qty := range quantities {
			sku := inventory.NormalizeSKU(rawSKU)
			if _, ok := cart.FindLineBySKU(sku); !ok {
				return shared.ErrLineNotFound.WithMessage(fmt.Sprintf("no line for %s in cart", sku))
			}
			if _, err := s.ledger.VerifyPurchasableWithin(ctx, repos, sku, qty); err != nil {
				return err
			}
			if _, err := cart.SetLineQuantity(sku, qty); err != nil {
				return err
			}
		}
		if err := repos.CartRepo().Save(ctx, cart); err != nil {
			return err
		}
		resp = ToCartResponse(cart)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
