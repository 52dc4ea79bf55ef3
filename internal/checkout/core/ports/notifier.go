package ports

import (
	"context"

	"github.com/gyroball/checkout/internal/checkout/core/domain/entity"
)

// OrderNotification summarizes a freshly created order for the operator
// distribution list.
type OrderNotification struct {
	Order     entity.Order
	Customer  entity.Customer
	Address   entity.ShippingAddress
	UnitPrice float64
}

// PaymentNotification reports a payment-status change reconciled from a
// gateway webhook.
type PaymentNotification struct {
	OrderID         string
	CustomerName    string
	CustomerEmail   string
	PaymentStatus   entity.PaymentStatus
	PaymentMethod   entity.PaymentMethod
	Amount          float64
	PaymentIntentID string
}

// Notifier dispatches templated notifications to the configured operator
// addresses. Every call site treats failures as non-fatal.
type Notifier interface {
	OrderCreated(ctx context.Context, n OrderNotification) error
	PaymentStatusChanged(ctx context.Context, n PaymentNotification) error
}
