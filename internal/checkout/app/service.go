// Package app implements the checkout use cases: order submission,
// webhook reconciliation, and order queries.
package app

import (
	"github.com/gyroball/checkout/internal/checkout/config"
	"github.com/gyroball/checkout/internal/checkout/core/ports"
	"github.com/gyroball/checkout/internal/pkg/cache"
	"github.com/gyroball/checkout/internal/saga/sagalog"
)

// Deps are the collaborators injected into the service.
type Deps struct {
	Customers ports.CustomerStore
	Addresses ports.AddressStore
	Orders    ports.OrderStore
	Gateway   ports.PreferenceGateway
	Notifier  ports.Notifier
	Cache     cache.Cache
	// SagaLog may be nil: saga transitions are then not persisted.
	SagaLog sagalog.Repository
}

type Service struct {
	cfg       config.Config
	customers ports.CustomerStore
	addresses ports.AddressStore
	orders    ports.OrderStore
	gateway   ports.PreferenceGateway
	notifier  ports.Notifier
	cache     cache.Cache
	sagaLog   sagalog.Repository
}

func New(cfg config.Config, deps Deps) *Service {
	c := deps.Cache
	if c == nil {
		c = cache.NewNoop()
	}
	return &Service{
		cfg:       cfg,
		customers: deps.Customers,
		addresses: deps.Addresses,
		orders:    deps.Orders,
		gateway:   deps.Gateway,
		notifier:  deps.Notifier,
		cache:     c,
		sagaLog:   deps.SagaLog,
	}
}
