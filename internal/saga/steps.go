package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gyroball/checkout/internal/checkout/core/domain/entity"
	"github.com/gyroball/checkout/internal/checkout/core/ports"
)

// --- UpsertCustomerStep ---

// UpsertCustomerStep finds the customer by tax id and overwrites its mutable
// fields, or inserts a new record if none exists. Compensation only deletes
// a customer this very step created: a pre-existing customer is shared with
// earlier orders and must survive a rollback.
type UpsertCustomerStep struct {
	store    ports.CustomerStore
	customer entity.Customer
	id       string
	created  bool
}

func NewUpsertCustomerStep(store ports.CustomerStore, customer entity.Customer) *UpsertCustomerStep {
	return &UpsertCustomerStep{store: store, customer: customer}
}

func (s *UpsertCustomerStep) Name() string { return "upsert_customer" }

func (s *UpsertCustomerStep) Execute(ctx context.Context) error {
	existing, err := s.store.FindByTaxID(ctx, s.customer.TaxID)
	switch {
	case err == nil:
		s.id = existing.ID
		updated := s.customer
		updated.ID = existing.ID
		if err := s.store.Update(ctx, &updated); err != nil {
			return fmt.Errorf("update customer %s: %w", existing.ID, err)
		}
		return nil
	case errors.Is(err, ports.ErrNotFound):
		s.customer.ID = uuid.NewString()
		s.customer.CreatedAt = time.Now().UTC()
		s.id = s.customer.ID
		s.created = true
		if err := s.store.Insert(ctx, &s.customer); err != nil {
			return fmt.Errorf("insert customer: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("find customer by tax id: %w", err)
	}
}

func (s *UpsertCustomerStep) Compensate(ctx context.Context) error {
	if !s.created {
		return nil
	}
	return s.store.Delete(ctx, s.id)
}

// CustomerID is valid after Execute succeeded.
func (s *UpsertCustomerStep) CustomerID() string { return s.id }

// --- InsertAddressStep ---

type InsertAddressStep struct {
	store    ports.AddressStore
	customer *UpsertCustomerStep
	address  entity.ShippingAddress
}

func NewInsertAddressStep(store ports.AddressStore, customer *UpsertCustomerStep, address entity.ShippingAddress) *InsertAddressStep {
	address.ID = uuid.NewString()
	return &InsertAddressStep{store: store, customer: customer, address: address}
}

func (s *InsertAddressStep) Name() string { return "insert_address" }

func (s *InsertAddressStep) Execute(ctx context.Context) error {
	s.address.CustomerID = s.customer.CustomerID()
	s.address.CreatedAt = time.Now().UTC()
	if err := s.store.Insert(ctx, &s.address); err != nil {
		return fmt.Errorf("insert shipping address: %w", err)
	}
	return nil
}

func (s *InsertAddressStep) Compensate(ctx context.Context) error {
	return s.store.Delete(ctx, s.address.ID)
}

func (s *InsertAddressStep) AddressID() string { return s.address.ID }

// --- InsertOrderStep ---

// InsertOrderStep creates the order with both statuses forced to pending,
// regardless of what the submission carried. The order id is assigned at
// construction time so it can double as the saga id.
type InsertOrderStep struct {
	store    ports.OrderStore
	customer *UpsertCustomerStep
	address  *InsertAddressStep
	order    entity.Order
}

func NewInsertOrderStep(store ports.OrderStore, customer *UpsertCustomerStep, address *InsertAddressStep, order entity.Order) *InsertOrderStep {
	order.ID = uuid.NewString()
	return &InsertOrderStep{store: store, customer: customer, address: address, order: order}
}

func (s *InsertOrderStep) Name() string { return "insert_order" }

func (s *InsertOrderStep) Execute(ctx context.Context) error {
	now := time.Now().UTC()
	s.order.CustomerID = s.customer.CustomerID()
	s.order.ShippingAddressID = s.address.AddressID()
	s.order.PaymentStatus = entity.PaymentPending
	s.order.FulfillmentStatus = entity.FulfillmentPending
	s.order.PaymentIntentID = ""
	s.order.CreatedAt = now
	s.order.UpdatedAt = now
	if err := s.store.Insert(ctx, &s.order); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *InsertOrderStep) Compensate(ctx context.Context) error {
	return s.store.Delete(ctx, s.order.ID)
}

func (s *InsertOrderStep) OrderID() string { return s.order.ID }

// Order returns the order as persisted. Valid after Execute succeeded.
func (s *InsertOrderStep) Order() entity.Order { return s.order }
