package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gyroball/checkout/internal/checkout/core/domain/entity"
	"github.com/gyroball/checkout/internal/checkout/core/ports"
)

// Notification is the gateway's webhook body.
type Notification struct {
	Type string           `json:"type"`
	Data NotificationData `json:"data"`
}

type NotificationData struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ReconcileOutcome tells the handler what happened without forcing it to
// inspect errors: everything except an update failure is acknowledged.
type ReconcileOutcome string

const (
	// ReconcileIgnored: notification type this service does not process.
	ReconcileIgnored ReconcileOutcome = "ignored"
	// ReconcileUnknownIntent: no order carries the notified payment id.
	// Acknowledged anyway — gateways retry on non-2xx and a retry storm
	// over an unknown id helps nobody.
	ReconcileUnknownIntent ReconcileOutcome = "unknown_intent"
	ReconcileUpdated       ReconcileOutcome = "updated"
)

// Reconcile maps a gateway payment notification onto the stored order.
// Re-delivery of the same notification is safe: writing the same mapped
// status twice is a no-op in effect.
func (s *Service) Reconcile(ctx context.Context, n Notification) (ReconcileOutcome, error) {
	if n.Type != "payment" {
		slog.InfoContext(ctx, "ignoring webhook notification", "type", n.Type)
		return ReconcileIgnored, nil
	}

	order, err := s.orders.FindByPaymentIntent(ctx, n.Data.ID)
	if errors.Is(err, ports.ErrNotFound) {
		slog.InfoContext(ctx, "no order for payment notification", "payment_id", n.Data.ID)
		return ReconcileUnknownIntent, nil
	}
	if err != nil {
		return "", fmt.Errorf("find order for payment %s: %w", n.Data.ID, err)
	}

	payment := entity.PaymentStatusFromGateway(n.Data.Status)
	fulfillment := entity.FulfillmentForPayment(payment)

	if err := s.orders.UpdateStatus(ctx, order.ID, payment, fulfillment); err != nil {
		// Fatal: the gateway must retry this delivery.
		return "", fmt.Errorf("update order %s status: %w", order.ID, err)
	}

	slog.InfoContext(ctx, "order status reconciled",
		"order_id", order.ID,
		"gateway_status", n.Data.Status,
		"payment_status", payment,
		"fulfillment_status", fulfillment,
	)

	s.invalidateOrder(ctx, order.ID)
	s.notifyPaymentStatus(ctx, order, payment)

	return ReconcileUpdated, nil
}

func (s *Service) notifyPaymentStatus(ctx context.Context, order *entity.Order, payment entity.PaymentStatus) {
	notification := ports.PaymentNotification{
		OrderID:         order.ID,
		PaymentStatus:   payment,
		PaymentMethod:   order.PaymentMethod,
		Amount:          order.Total,
		PaymentIntentID: order.PaymentIntentID,
	}

	// Customer identity is informational only; a lookup failure must not
	// block the notification, let alone the webhook response.
	if details, err := s.orders.List(ctx, ports.OrderFilter{OrderID: order.ID}); err == nil && len(details) == 1 {
		notification.CustomerName = details[0].Customer.Name
		notification.CustomerEmail = details[0].Customer.Email
	}

	if err := s.notifier.PaymentStatusChanged(ctx, notification); err != nil {
		slog.WarnContext(ctx, "payment-status notification failed",
			"order_id", order.ID, "error", err)
	}
}
