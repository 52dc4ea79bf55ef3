package entity

import "time"

type PaymentMethod string

const (
	PaymentMethodPix  PaymentMethod = "pix"
	PaymentMethodCard PaymentMethod = "card"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentApproved  PaymentStatus = "approved"
	PaymentRejected  PaymentStatus = "rejected"
	PaymentCancelled PaymentStatus = "cancelled"
)

type FulfillmentStatus string

const (
	FulfillmentPending    FulfillmentStatus = "pending"
	FulfillmentProcessing FulfillmentStatus = "processing"
	FulfillmentShipped    FulfillmentStatus = "shipped"
	FulfillmentDelivered  FulfillmentStatus = "delivered"
	FulfillmentCancelled  FulfillmentStatus = "cancelled"
)

// Order references exactly one customer and one shipping address. It is
// created once with both statuses pending and mutated only by the webhook
// reconciler afterwards. Total is stored as provided by the client; the
// server does not recompute it from quantity.
//
// PaymentIntentID is the id the payment gateway returned for this order's
// checkout preference. It stays empty (NULL in storage) until the gateway
// call succeeds, which includes the degraded mock-payment path.
type Order struct {
	ID                string
	CustomerID        string
	ShippingAddressID string
	Quantity          int
	Subtotal          float64
	ShippingCost      float64
	Total             float64
	PaymentMethod     PaymentMethod
	PaymentStatus     PaymentStatus
	FulfillmentStatus FulfillmentStatus
	PaymentIntentID   string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OrderDetail is an order joined with its customer and shipping address,
// as returned by the order query endpoint.
type OrderDetail struct {
	Order    Order
	Customer Customer
	Address  ShippingAddress
}
