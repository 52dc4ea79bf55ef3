package ports

import (
	"context"
	"errors"

	"github.com/gyroball/checkout/internal/checkout/core/domain/entity"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

type CustomerStore interface {
	// FindByTaxID returns ErrNotFound when no customer has the given tax id.
	FindByTaxID(ctx context.Context, taxID string) (*entity.Customer, error)
	Insert(ctx context.Context, customer *entity.Customer) error
	// Update overwrites the mutable fields (name, email, phone) of an
	// existing customer.
	Update(ctx context.Context, customer *entity.Customer) error
	Delete(ctx context.Context, id string) error
}

type AddressStore interface {
	Insert(ctx context.Context, address *entity.ShippingAddress) error
	Delete(ctx context.Context, id string) error
}

// OrderFilter narrows an order query. Empty fields match everything.
type OrderFilter struct {
	CustomerID string
	OrderID    string
}

type OrderStore interface {
	Insert(ctx context.Context, order *entity.Order) error
	Delete(ctx context.Context, id string) error
	// SetPaymentIntent stores the gateway preference id on an order after
	// the checkout session has been created.
	SetPaymentIntent(ctx context.Context, orderID, intentID string) error
	// FindByPaymentIntent returns ErrNotFound when no order carries the id.
	FindByPaymentIntent(ctx context.Context, intentID string) (*entity.Order, error)
	// UpdateStatus writes both status fields and updated_at in one statement.
	UpdateStatus(ctx context.Context, orderID string, payment entity.PaymentStatus, fulfillment entity.FulfillmentStatus) error
	// List returns orders joined with customer and address, newest first.
	List(ctx context.Context, filter OrderFilter) ([]entity.OrderDetail, error)
}
