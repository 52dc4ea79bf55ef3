package httpx

import (
	"time"

	"github.com/gyroball/checkout/internal/checkout/app"
	"github.com/gyroball/checkout/internal/checkout/core/domain/entity"
)

type CreateOrderResponse struct {
	Success    bool               `json:"success"`
	OrderID    string             `json:"orderId"`
	Payment    app.PaymentSummary `json:"payment"`
	PaymentURL string             `json:"paymentUrl,omitempty"`
	Message    string             `json:"message,omitempty"`
}

type ListOrdersResponse struct {
	Success bool                  `json:"success"`
	Count   int                   `json:"count"`
	Orders  []OrderDetailResponse `json:"orders"`
}

type OrderDetailResponse struct {
	ID                string           `json:"id"`
	Quantity          int              `json:"quantity"`
	Subtotal          float64          `json:"subtotal"`
	ShippingCost      float64          `json:"shippingCost"`
	Total             float64          `json:"total"`
	PaymentMethod     string           `json:"paymentMethod"`
	PaymentStatus     string           `json:"paymentStatus"`
	FulfillmentStatus string           `json:"fulfillmentStatus"`
	PaymentIntentID   string           `json:"paymentIntentId,omitempty"`
	CreatedAt         string           `json:"createdAt"`
	UpdatedAt         string           `json:"updatedAt"`
	Customer          CustomerResponse `json:"customer"`
	Address           AddressResponse  `json:"shippingAddress"`
}

type CustomerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	TaxID string `json:"cpf"`
	Phone string `json:"phone,omitempty"`
}

type AddressResponse struct {
	PostalCode   string `json:"cep"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

type WebhookAck struct {
	Success bool   `json:"success"`
	Note    string `json:"note,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func mapOrderDetail(d entity.OrderDetail) OrderDetailResponse {
	return OrderDetailResponse{
		ID:                d.Order.ID,
		Quantity:          d.Order.Quantity,
		Subtotal:          d.Order.Subtotal,
		ShippingCost:      d.Order.ShippingCost,
		Total:             d.Order.Total,
		PaymentMethod:     string(d.Order.PaymentMethod),
		PaymentStatus:     string(d.Order.PaymentStatus),
		FulfillmentStatus: string(d.Order.FulfillmentStatus),
		PaymentIntentID:   d.Order.PaymentIntentID,
		CreatedAt:         d.Order.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         d.Order.UpdatedAt.Format(time.RFC3339),
		Customer: CustomerResponse{
			ID:    d.Customer.ID,
			Name:  d.Customer.Name,
			Email: d.Customer.Email,
			TaxID: d.Customer.TaxID,
			Phone: d.Customer.Phone,
		},
		Address: AddressResponse{
			PostalCode:   d.Address.PostalCode,
			Street:       d.Address.Street,
			Number:       d.Address.Number,
			Complement:   d.Address.Complement,
			Neighborhood: d.Address.Neighborhood,
			City:         d.Address.City,
			State:        d.Address.State,
		},
	}
}

func mapOrderDetails(details []entity.OrderDetail) []OrderDetailResponse {
	out := make([]OrderDetailResponse, len(details))
	for i, d := range details {
		out[i] = mapOrderDetail(d)
	}
	return out
}
