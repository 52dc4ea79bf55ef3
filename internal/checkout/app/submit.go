package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/gyroball/checkout/internal/checkout/core/domain/entity"
	"github.com/gyroball/checkout/internal/checkout/core/ports"
	"github.com/gyroball/checkout/internal/saga"
)

// SubmissionRequest is the flat checkout payload: customer, address and
// order fields in one object, exactly as the storefront form posts them.
type SubmissionRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	TaxID string `json:"cpf"`
	Phone string `json:"phone"`

	PostalCode   string `json:"cep"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`

	Quantity      int     `json:"quantity"`
	Subtotal      float64 `json:"subtotal"`
	ShippingCost  float64 `json:"shippingCost"`
	Total         float64 `json:"total"`
	PaymentMethod string  `json:"paymentMethod"`
}

// PaymentSummary describes the checkout session returned to the browser.
// When the gateway could not be reached, Mock is true and InitPoint holds a
// placeholder path so the client can still finish a degraded flow.
type PaymentSummary struct {
	Mock             bool   `json:"mock,omitempty"`
	Message          string `json:"message,omitempty"`
	PreferenceID     string `json:"preference_id,omitempty"`
	InitPoint        string `json:"init_point,omitempty"`
	SandboxInitPoint string `json:"sandbox_init_point,omitempty"`
}

type SubmissionResult struct {
	OrderID    string
	Payment    PaymentSummary
	PaymentURL string
	Message    string
}

const mockInitPoint = "/checkout?mock=true"

// SubmitOrder runs the order-creation flow: the persistence saga (customer
// upsert, address insert, order insert), then the gateway preference call.
// A persistence failure aborts and compensates; a gateway failure degrades
// to a mock payment response, keeping the order.
func (s *Service) SubmitOrder(ctx context.Context, req SubmissionRequest) (*SubmissionResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal submission: %w", err)
	}

	custStep := saga.NewUpsertCustomerStep(s.customers, entity.Customer{
		TaxID: req.TaxID,
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	addrStep := saga.NewInsertAddressStep(s.addresses, custStep, entity.ShippingAddress{
		PostalCode:   req.PostalCode,
		Street:       req.Street,
		Number:       req.Number,
		Complement:   req.Complement,
		Neighborhood: req.Neighborhood,
		City:         req.City,
		State:        req.State,
	})
	orderStep := saga.NewInsertOrderStep(s.orders, custStep, addrStep, entity.Order{
		Quantity:      req.Quantity,
		Subtotal:      req.Subtotal,
		ShippingCost:  req.ShippingCost,
		Total:         req.Total,
		PaymentMethod: entity.PaymentMethod(req.PaymentMethod),
	})

	orch := saga.NewOrchestrator(orderStep.OrderID(), string(payload),
		[]saga.Step{custStep, addrStep, orderStep}, s.sagaLog)
	if err := orch.Start(ctx); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	order := orderStep.Order()
	result := &SubmissionResult{
		OrderID: order.ID,
		Message: "Pedido criado com sucesso!",
	}

	pref, err := s.gateway.CreatePreference(ctx, s.buildPreferenceRequest(&order, req))
	if err != nil {
		// The order record wins over the payment path: degrade instead of
		// failing the request, and let the client detect mock mode.
		slog.ErrorContext(ctx, "gateway preference creation failed, returning mock payment",
			"order_id", order.ID, "error", err)
		result.Payment = PaymentSummary{
			Mock:      true,
			Message:   "pagamento indisponível no momento, pedido registrado",
			InitPoint: mockInitPoint,
		}
		result.PaymentURL = mockInitPoint
		return result, nil
	}

	// The original flow ignores a failure here too: the preference exists
	// either way, and the webhook carries the order id as external
	// reference for manual reconciliation.
	if err := s.orders.SetPaymentIntent(ctx, order.ID, pref.ID); err != nil {
		slog.WarnContext(ctx, "failed to store payment intent id",
			"order_id", order.ID, "preference_id", pref.ID, "error", err)
	} else {
		order.PaymentIntentID = pref.ID
	}

	s.notifyOrderCreated(ctx, order, custStep.CustomerID(), addrStep.AddressID(), req)

	result.Payment = PaymentSummary{
		PreferenceID:     pref.ID,
		InitPoint:        pref.InitPoint,
		SandboxInitPoint: pref.SandboxInitPoint,
	}
	result.PaymentURL = pref.InitPoint
	if result.PaymentURL == "" {
		result.PaymentURL = pref.SandboxInitPoint
	}
	return result, nil
}

func (s *Service) buildPreferenceRequest(order *entity.Order, req SubmissionRequest) *ports.PreferenceRequest {
	plural := ""
	if order.Quantity > 1 {
		plural = "s"
	}

	pref := &ports.PreferenceRequest{
		Items: []ports.PreferenceItem{{
			ID:          order.ID,
			Title:       fmt.Sprintf("%s - %d unidade%s", s.cfg.Product.Name, order.Quantity, plural),
			Description: s.cfg.Product.Description,
			Quantity:    order.Quantity,
			UnitPrice:   order.Total,
			CurrencyID:  "BRL",
		}},
		Payer: ports.PreferencePayer{
			Name:  req.Name,
			Email: req.Email,
			Identification: ports.Identification{
				Type:   "CPF",
				Number: digits(req.TaxID),
			},
			Phone: ports.Phone{Number: digits(req.Phone)},
			Address: ports.PayerAddress{
				ZipCode:      digits(req.PostalCode),
				StreetName:   req.Street,
				StreetNumber: req.Number,
				City:         req.City,
				FederalUnit:  req.State,
			},
		},
		BackURLs: ports.BackURLs{
			Success: s.cfg.AppURL + "/payment/success",
			Failure: s.cfg.AppURL + "/payment/failure",
			Pending: s.cfg.AppURL + "/payment/pending",
		},
		AutoReturn:          "approved",
		NotificationURL:     s.cfg.AppURL + "/api/webhooks/mercadopago",
		ExternalReference:   order.ID,
		StatementDescriptor: s.cfg.Product.StatementDescriptor,
	}

	if order.PaymentMethod == entity.PaymentMethodPix {
		pref.PaymentMethods = ports.PaymentMethodRules{
			ExcludedPaymentTypes: []ports.ExcludedPaymentType{
				{ID: "credit_card"}, {ID: "debit_card"}, {ID: "ticket"},
			},
			Installments: 1,
		}
	} else {
		pref.PaymentMethods = ports.PaymentMethodRules{
			ExcludedPaymentTypes: []ports.ExcludedPaymentType{{ID: "ticket"}},
			Installments:         12,
		}
	}
	return pref
}

func (s *Service) notifyOrderCreated(ctx context.Context, order entity.Order, customerID, addressID string, req SubmissionRequest) {
	unitPrice := req.Subtotal
	if req.Quantity > 0 {
		unitPrice = req.Subtotal / float64(req.Quantity)
	}

	err := s.notifier.OrderCreated(ctx, ports.OrderNotification{
		Order: order,
		Customer: entity.Customer{
			ID:    customerID,
			TaxID: req.TaxID,
			Name:  req.Name,
			Email: req.Email,
			Phone: req.Phone,
		},
		Address: entity.ShippingAddress{
			ID:           addressID,
			CustomerID:   customerID,
			PostalCode:   req.PostalCode,
			Street:       req.Street,
			Number:       req.Number,
			Complement:   req.Complement,
			Neighborhood: req.Neighborhood,
			City:         req.City,
			State:        req.State,
		},
		UnitPrice: unitPrice,
	})
	if err != nil {
		slog.WarnContext(ctx, "order-created notification failed",
			"order_id", order.ID, "error", err)
	}
}

// digits strips every non-digit rune, as the gateway expects for tax ids,
// phone numbers and postal codes.
func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
