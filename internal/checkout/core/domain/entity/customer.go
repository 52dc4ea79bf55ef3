package entity

import "time"

// Customer is identified by its national tax id (CPF). The record is created
// on the first order and its mutable fields are overwritten on every
// subsequent order from the same tax id. There is no deletion path outside
// of saga compensation.
type Customer struct {
	ID        string
	TaxID     string
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
}
