package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gyroball/checkout/internal/checkout/core/domain/entity"
	"github.com/gyroball/checkout/internal/checkout/core/ports"
)

// orderCacheTTL is short on purpose: the client polls every few seconds and
// the webhook invalidates on write, so staleness is bounded either way.
const orderCacheTTL = 5 * time.Second

// ListOrders returns orders joined with customer and address, newest first.
// Single-order lookups — the shape of the client polling loop — go through
// the cache.
func (s *Service) ListOrders(ctx context.Context, customerID, orderID string) ([]entity.OrderDetail, error) {
	if orderID != "" && customerID == "" {
		return s.getOrderCached(ctx, orderID)
	}
	return s.orders.List(ctx, ports.OrderFilter{CustomerID: customerID, OrderID: orderID})
}

func (s *Service) getOrderCached(ctx context.Context, orderID string) ([]entity.OrderDetail, error) {
	key := s.cache.GenerateKey("order", orderID)

	if cached, err := s.cache.Get(ctx, key); err == nil && cached != "" {
		var details []entity.OrderDetail
		if err := json.Unmarshal([]byte(cached), &details); err == nil {
			return details, nil
		}
	} else if err != nil {
		slog.WarnContext(ctx, "order cache read failed", "order_id", orderID, "error", err)
	}

	details, err := s.orders.List(ctx, ports.OrderFilter{OrderID: orderID})
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(details); err == nil {
		if err := s.cache.Set(ctx, key, string(encoded), orderCacheTTL); err != nil {
			slog.WarnContext(ctx, "order cache write failed", "order_id", orderID, "error", err)
		}
	}
	return details, nil
}

func (s *Service) invalidateOrder(ctx context.Context, orderID string) {
	if err := s.cache.Delete(ctx, s.cache.GenerateKey("order", orderID)); err != nil {
		slog.WarnContext(ctx, "order cache invalidation failed", "order_id", orderID, "error", err)
	}
}
