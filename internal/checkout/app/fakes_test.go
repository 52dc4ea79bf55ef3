package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gyroball/checkout/internal/checkout/config"
	"github.com/gyroball/checkout/internal/checkout/core/domain/entity"
	"github.com/gyroball/checkout/internal/checkout/core/ports"
)

// --- stores ---

type fakeStore struct {
	customers map[string]entity.Customer
	addresses map[string]entity.ShippingAddress
	orders    map[string]entity.Order

	failOrderInsert bool
	failUpdate      bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		customers: map[string]entity.Customer{},
		addresses: map[string]entity.ShippingAddress{},
		orders:    map[string]entity.Order{},
	}
}

func (f *fakeStore) FindByTaxID(_ context.Context, taxID string) (*entity.Customer, error) {
	for _, c := range f.customers {
		if c.TaxID == taxID {
			found := c
			return &found, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (f *fakeStore) Insert(_ context.Context, c *entity.Customer) error {
	f.customers[c.ID] = *c
	return nil
}

func (f *fakeStore) Update(_ context.Context, c *entity.Customer) error {
	existing, ok := f.customers[c.ID]
	if !ok {
		return ports.ErrNotFound
	}
	existing.Name, existing.Email, existing.Phone = c.Name, c.Email, c.Phone
	f.customers[c.ID] = existing
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	delete(f.customers, id)
	return nil
}

type fakeAddressStore struct{ store *fakeStore }

func (f fakeAddressStore) Insert(_ context.Context, a *entity.ShippingAddress) error {
	f.store.addresses[a.ID] = *a
	return nil
}

func (f fakeAddressStore) Delete(_ context.Context, id string) error {
	delete(f.store.addresses, id)
	return nil
}

type fakeOrderStore struct{ store *fakeStore }

func (f fakeOrderStore) Insert(_ context.Context, o *entity.Order) error {
	if f.store.failOrderInsert {
		return errors.New("db unavailable")
	}
	f.store.orders[o.ID] = *o
	return nil
}

func (f fakeOrderStore) Delete(_ context.Context, id string) error {
	delete(f.store.orders, id)
	return nil
}

func (f fakeOrderStore) SetPaymentIntent(_ context.Context, orderID, intentID string) error {
	o, ok := f.store.orders[orderID]
	if !ok {
		return ports.ErrNotFound
	}
	o.PaymentIntentID = intentID
	f.store.orders[orderID] = o
	return nil
}

func (f fakeOrderStore) FindByPaymentIntent(_ context.Context, intentID string) (*entity.Order, error) {
	for _, o := range f.store.orders {
		if o.PaymentIntentID != "" && o.PaymentIntentID == intentID {
			found := o
			return &found, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (f fakeOrderStore) UpdateStatus(_ context.Context, orderID string, payment entity.PaymentStatus, fulfillment entity.FulfillmentStatus) error {
	if f.store.failUpdate {
		return errors.New("db unavailable")
	}
	o, ok := f.store.orders[orderID]
	if !ok {
		return ports.ErrNotFound
	}
	o.PaymentStatus = payment
	o.FulfillmentStatus = fulfillment
	o.UpdatedAt = time.Now().UTC()
	f.store.orders[orderID] = o
	return nil
}

func (f fakeOrderStore) List(_ context.Context, filter ports.OrderFilter) ([]entity.OrderDetail, error) {
	var details []entity.OrderDetail
	for _, o := range f.store.orders {
		if filter.OrderID != "" && o.ID != filter.OrderID {
			continue
		}
		if filter.CustomerID != "" && o.CustomerID != filter.CustomerID {
			continue
		}
		details = append(details, entity.OrderDetail{
			Order:    o,
			Customer: f.store.customers[o.CustomerID],
			Address:  f.store.addresses[o.ShippingAddressID],
		})
	}
	sort.Slice(details, func(i, j int) bool {
		return details[i].Order.CreatedAt.After(details[j].Order.CreatedAt)
	})
	return details, nil
}

// --- gateway ---

type fakeGateway struct {
	fail     bool
	lastReq  *ports.PreferenceRequest
	requests int
}

func (g *fakeGateway) CreatePreference(_ context.Context, req *ports.PreferenceRequest) (*ports.Preference, error) {
	g.requests++
	g.lastReq = req
	if g.fail {
		return nil, errors.New("gateway unreachable")
	}
	return &ports.Preference{
		ID:               fmt.Sprintf("pref-%d", g.requests),
		InitPoint:        "https://mp.example/init",
		SandboxInitPoint: "https://mp.example/sandbox",
	}, nil
}

// --- notifier ---

type fakeNotifier struct {
	fail          bool
	orderCreated  []ports.OrderNotification
	statusChanged []ports.PaymentNotification
}

func (n *fakeNotifier) OrderCreated(_ context.Context, notification ports.OrderNotification) error {
	n.orderCreated = append(n.orderCreated, notification)
	if n.fail {
		return errors.New("smtp down")
	}
	return nil
}

func (n *fakeNotifier) PaymentStatusChanged(_ context.Context, notification ports.PaymentNotification) error {
	n.statusChanged = append(n.statusChanged, notification)
	if n.fail {
		return errors.New("smtp down")
	}
	return nil
}

// --- cache ---

type fakeCache struct {
	values  map[string]string
	deletes []string
}

func newFakeCache() *fakeCache { return &fakeCache{values: map[string]string{}} }

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.values[key] = fmt.Sprint(value)
	return nil
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	return c.values[key], nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	delete(c.values, key)
	c.deletes = append(c.deletes, key)
	return nil
}

func (c *fakeCache) GenerateKey(operation, key string) string {
	return operation + ":" + key
}

// --- harness ---

type harness struct {
	store    *fakeStore
	gateway  *fakeGateway
	notifier *fakeNotifier
	cache    *fakeCache
	service  *Service
}

func newHarness() *harness {
	store := newFakeStore()
	gateway := &fakeGateway{}
	notifier := &fakeNotifier{}
	c := newFakeCache()

	cfg := config.Config{
		AppURL: "https://gyroball.example",
		Product: config.ProductConfig{
			Name:                "Gyroball Pro",
			Description:         "Fortalecedor Muscular Giroscópico",
			StatementDescriptor: "GYROBALL PRO",
		},
	}

	svc := New(cfg, Deps{
		Customers: store,
		Addresses: fakeAddressStore{store},
		Orders:    fakeOrderStore{store},
		Gateway:   gateway,
		Notifier:  notifier,
		Cache:     c,
	})

	return &harness{store: store, gateway: gateway, notifier: notifier, cache: c, service: svc}
}

func validSubmission() SubmissionRequest {
	return SubmissionRequest{
		Name:          "Maria Souza",
		Email:         "maria@example.com",
		TaxID:         "123.456.789-09",
		Phone:         "(11) 99999-0000",
		PostalCode:    "01310-100",
		Street:        "Av. Paulista",
		Number:        "1000",
		Neighborhood:  "Bela Vista",
		City:          "São Paulo",
		State:         "SP",
		Quantity:      2,
		Subtotal:      99.90,
		ShippingCost:  0,
		Total:         99.90,
		PaymentMethod: "pix",
	}
}
