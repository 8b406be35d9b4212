package inventory

import (
	"context"
	"fmt"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/inventory"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// StockLedger is the only writer of inventory item stock counters. Every
// read-check-write runs under a row lock inside a transaction.
type StockLedger struct {
	scope          TransactionScope
	repos          TransactionalRepositories
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewStockLedger creates a StockLedger. repos serves the non-locking reads.
func NewStockLedger(scope TransactionScope, repos TransactionalRepositories, logger *zap.Logger) *StockLedger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockLedger{
		scope:  scope,
		repos:  repos,
		logger: logger,
	}
}

// SetEventPublisher sets the publisher used for events after commit
func (l *StockLedger) SetEventPublisher(publisher shared.EventPublisher) {
	l.eventPublisher = publisher
}

// PublishEvents publishes events collected from a committed transaction.
// Publish failures are logged, the committed change stands.
func (l *StockLedger) PublishEvents(ctx context.Context, events []shared.DomainEvent) {
	if l.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := l.eventPublisher.Publish(ctx, events...); err != nil {
		l.logger.Warn("failed to publish stock events", zap.Int("count", len(events)), zap.Error(err))
	}
}

// AdjustAvailable changes the available counter of sku and returns the new value
func (l *StockLedger) AdjustAvailable(ctx context.Context, sku string, quantity int, dir inventory.Direction) (int, error) {
	return l.adjust(ctx, Adjustment{SKU: sku, Counter: inventory.CounterAvailable, Quantity: quantity, Direction: dir})
}

// AdjustActual changes the actual counter of sku and returns the new value
func (l *StockLedger) AdjustActual(ctx context.Context, sku string, quantity int, dir inventory.Direction) (int, error) {
	return l.adjust(ctx, Adjustment{SKU: sku, Counter: inventory.CounterActual, Quantity: quantity, Direction: dir})
}

func (l *StockLedger) adjust(ctx context.Context, adj Adjustment) (int, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_ledger", "adjust")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrSKU, adj.SKU,
		telemetry.SpanAttrQuantity, adj.Quantity,
		"counter", string(adj.Counter),
		"direction", string(adj.Direction),
	)

	var result *AdjustmentResult
	err := l.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		result, err = l.ApplyWithin(ctx, repos, adj)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, err
	}

	l.PublishEvents(ctx, result.Item.PullDomainEvents())
	return result.Value, nil
}

// ApplyWithin applies adj using the caller's transactional repositories. The
// item's pending events stay on the returned item; the caller publishes them
// once its transaction has committed.
func (l *StockLedger) ApplyWithin(ctx context.Context, repos TransactionalRepositories, adj Adjustment) (*AdjustmentResult, error) {
	if !adj.Direction.IsValid() || adj.Quantity < 0 {
		return nil, shared.ErrInvalidOperation.WithMessage(
			fmt.Sprintf("cannot %s %s stock by %d", adj.Direction, adj.Counter, adj.Quantity))
	}

	item, err := repos.InventoryRepo().FindBySKUForUpdate(ctx, inventory.NormalizeSKU(adj.SKU))
	if err != nil {
		return nil, err
	}

	value, err := item.Adjust(adj.Counter, adj.Quantity, adj.Direction)
	if err != nil {
		l.logger.Info("stock adjustment rejected",
			zap.String("sku", item.SKU),
			zap.String("counter", string(adj.Counter)),
			zap.String("direction", string(adj.Direction)),
			zap.Int("quantity", adj.Quantity),
			zap.Error(err),
		)
		return nil, err
	}

	if err := repos.InventoryRepo().SaveWithLock(ctx, item); err != nil {
		return nil, err
	}

	if adj.Direction == inventory.Decrease && value == 0 && adj.Quantity > 0 {
		l.logger.Warn("stock depleted",
			zap.String("sku", item.SKU),
			zap.String("counter", string(adj.Counter)),
		)
	}
	return &AdjustmentResult{Item: item, Value: value}, nil
}

// SetItemActive activates or deactivates sku under its row lock
func (l *StockLedger) SetItemActive(ctx context.Context, sku string, active bool) (*InventoryItemResponse, error) {
	return l.updateItem(ctx, "set_item_active", sku, func(item *inventory.InventoryItem) {
		item.SetActive(active)
	})
}

// SetItemSuppliable marks whether sku can currently be supplied
func (l *StockLedger) SetItemSuppliable(ctx context.Context, sku string, suppliable bool) (*InventoryItemResponse, error) {
	return l.updateItem(ctx, "set_item_suppliable", sku, func(item *inventory.InventoryItem) {
		item.SetSuppliable(suppliable)
	})
}

// UpdateItemStatus applies the flags set in change in one locked write
func (l *StockLedger) UpdateItemStatus(ctx context.Context, sku string, change ItemStatusChange) (*InventoryItemResponse, error) {
	return l.updateItem(ctx, "update_item_status", sku, func(item *inventory.InventoryItem) {
		if change.Active != nil {
			item.SetActive(*change.Active)
		}
		if change.Suppliable != nil {
			item.SetSuppliable(*change.Suppliable)
		}
	})
}

func (l *StockLedger) updateItem(ctx context.Context, op, sku string, change func(*inventory.InventoryItem)) (*InventoryItemResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_ledger", op)
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrSKU, sku)

	var item *inventory.InventoryItem
	err := l.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		item, err = repos.InventoryRepo().FindBySKUForUpdate(ctx, inventory.NormalizeSKU(sku))
		if err != nil {
			return err
		}
		version := item.Version
		change(item)
		if item.Version == version {
			return nil
		}
		return repos.InventoryRepo().SaveWithLock(ctx, item)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	l.logger.Info("inventory item status updated",
		zap.String("sku", item.SKU),
		zap.Bool("active", item.IsActive),
		zap.Bool("suppliable", item.IsSuppliable),
	)
	resp := ToInventoryItemResponse(item)
	return &resp, nil
}

// SetProductActive activates or deactivates a product and applies the same
// status to every one of its items. The product row is locked first, then
// its items.
func (l *StockLedger) SetProductActive(ctx context.Context, productSKU string, active bool) (*ProductStatusResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock_ledger", "set_product_active")
	defer span.End()
	telemetry.SetAttributes(span, "product_sku", productSKU, "active", active)

	var (
		product *catalog.Product
		items   []*inventory.InventoryItem
	)
	err := l.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		product, err = repos.ProductRepo().FindBySKUForUpdate(ctx, inventory.NormalizeSKU(productSKU))
		if err != nil {
			return err
		}
		version := product.Version
		product.SetActive(active)
		if product.Version != version {
			if err := repos.ProductRepo().Save(ctx, product); err != nil {
				return err
			}
		}

		items, err = repos.InventoryRepo().FindByProductForUpdate(ctx, product.ID)
		if err != nil {
			return err
		}
		for _, item := range items {
			version := item.Version
			item.SetActive(active)
			if item.Version == version {
				continue
			}
			if err := repos.InventoryRepo().SaveWithLock(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	l.logger.Info("product status updated",
		zap.String("product_sku", product.SKU),
		zap.Bool("active", active),
		zap.Int("items", len(items)),
	)
	resp := &ProductStatusResponse{
		SKU:      product.SKU,
		IsActive: product.IsActive,
		Items:    make([]InventoryItemResponse, len(items)),
	}
	for i, item := range items {
		resp.Items[i] = ToInventoryItemResponse(item)
	}
	return resp, nil
}

// IsAvailable reports whether sku may be sold: every ancestor category, the
// item itself and its product must be active. The error names the first
// failing condition in that order.
func (l *StockLedger) IsAvailable(ctx context.Context, sku string) (bool, error) {
	item, err := l.repos.InventoryRepo().FindBySKU(ctx, inventory.NormalizeSKU(sku))
	if err != nil {
		return false, err
	}
	if err := l.checkAvailable(ctx, l.repos, item); err != nil {
		return false, err
	}
	return true, nil
}

func (l *StockLedger) checkAvailable(ctx context.Context, repos TransactionalRepositories, item *inventory.InventoryItem) error {
	product, err := repos.ProductRepo().FindByID(ctx, item.ProductID)
	if err != nil {
		return err
	}
	ancestry, err := repos.CategoryRepo().FindAncestry(ctx, product.CategoryID)
	if err != nil {
		return err
	}
	if c := ancestry.FirstInactive(); c != nil {
		return shared.ErrCategoryNotActive.WithMessage(fmt.Sprintf("category %q of %s is not active", c.Title, item.SKU))
	}
	if !item.IsActive {
		return shared.ErrItemNotActive.WithMessage(fmt.Sprintf("%s is not active", item.SKU))
	}
	if !product.IsActive {
		return shared.ErrProductNotActive.WithMessage(fmt.Sprintf("product %s of %s is not active", product.SKU, item.SKU))
	}
	return nil
}

// IsInStock reports whether quantity units of sku can be supplied now
func (l *StockLedger) IsInStock(ctx context.Context, sku string, quantity int) (bool, error) {
	item, err := l.repos.InventoryRepo().FindBySKU(ctx, inventory.NormalizeSKU(sku))
	if err != nil {
		return false, err
	}
	if err := item.CheckPurchasable(quantity); err != nil {
		return false, err
	}
	return true, nil
}

// VerifyPurchasableWithin runs the availability and stock checks for sku
// against the caller's transactional repositories and returns the item.
func (l *StockLedger) VerifyPurchasableWithin(ctx context.Context, repos TransactionalRepositories, sku string, quantity int) (*inventory.InventoryItem, error) {
	item, err := repos.InventoryRepo().FindBySKU(ctx, inventory.NormalizeSKU(sku))
	if err != nil {
		return nil, err
	}
	if err := l.checkAvailable(ctx, repos, item); err != nil {
		return nil, err
	}
	if err := item.CheckPurchasable(quantity); err != nil {
		return nil, err
	}
	return item, nil
}

// VerifyConsistency fails when the actual counter of sku is below the available one
func (l *StockLedger) VerifyConsistency(ctx context.Context, sku string) error {
	item, err := l.repos.InventoryRepo().FindBySKU(ctx, inventory.NormalizeSKU(sku))
	if err != nil {
		return err
	}
	return item.CheckConsistency()
}

// GetItem returns the read model of sku
func (l *StockLedger) GetItem(ctx context.Context, sku string) (*InventoryItemResponse, error) {
	item, err := l.repos.InventoryRepo().FindBySKU(ctx, inventory.NormalizeSKU(sku))
	if err != nil {
		return nil, err
	}
	resp := ToInventoryItemResponse(item)
	return &resp, nil
}
