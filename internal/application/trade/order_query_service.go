package trade

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
)

// OrderQueryService serves read-only order lookups
type OrderQueryService struct {
	orders  trade.OrderRepository
	refunds trade.RefundRepository
}

// NewOrderQueryService creates a new OrderQueryService
func NewOrderQueryService(orders trade.OrderRepository, refunds trade.RefundRepository) *OrderQueryService {
	return &OrderQueryService{orders: orders, refunds: refunds}
}

// GetOrder returns an order by ID
func (s *OrderQueryService) GetOrder(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// GetOrderByTransactionRef returns the order created for a gateway transaction
func (s *OrderQueryService) GetOrderByTransactionRef(ctx context.Context, ref string) (*OrderResponse, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, shared.ErrInvalidTransactionRef
	}
	order, err := s.orders.FindByTransactionRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// ListOrdersByUser returns every order a user has placed, newest first
func (s *OrderQueryService) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]OrderResponse, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := make([]OrderResponse, len(orders))
	for i := range orders {
		resp[i] = ToOrderResponse(&orders[i])
	}
	return resp, nil
}

// CountOrdersByStatus returns the number of orders of a user per status.
// Every known status is present in the result, zero when the user has none.
func (s *OrderQueryService) CountOrdersByStatus(ctx context.Context, userID uuid.UUID) (map[string]int64, error) {
	counts, err := s.orders.CountByStatus(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := make(map[string]int64, len(trade.AllOrderStatuses()))
	for _, st := range trade.AllOrderStatuses() {
		result[st.String()] = counts[st]
	}
	return result, nil
}

// ListRefunds returns the refunds recorded for an order
func (s *OrderQueryService) ListRefunds(ctx context.Context, orderID uuid.UUID) ([]RefundResponse, error) {
	refunds, err := s.refunds.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp := make([]RefundResponse, len(refunds))
	for i := range refunds {
		resp[i] = ToRefundResponse(&refunds[i])
	}
	return resp, nil
}
