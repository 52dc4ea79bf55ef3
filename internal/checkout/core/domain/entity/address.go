package entity

import "time"

// ShippingAddress belongs to exactly one customer and is created fresh for
// every order. Addresses are never deduplicated or reused.
type ShippingAddress struct {
	ID           string
	CustomerID   string
	PostalCode   string
	Street       string
	Number       string
	Complement   string
	Neighborhood string
	City         string
	State        string
	CreatedAt    time.Time
}
