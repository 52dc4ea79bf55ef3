package resend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyroball/checkout/internal/checkout/core/domain/entity"
	"github.com/gyroball/checkout/internal/checkout/core/ports"
)

func TestOrderCreatedSendsOneEmailPerAdmin(t *testing.T) {
	var sent []sendRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))

		var req sendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		sent = append(sent, req)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"email-1"}`))
	}))
	defer srv.Close()

	client := New(Config{
		APIKey:      "re_test",
		From:        "Gyroball Pro <noreply@gyroball.com.br>",
		AdminEmails: []string{"ops1@example.com", "ops2@example.com"},
		BaseURL:     srv.URL,
	})

	err := client.OrderCreated(context.Background(), ports.OrderNotification{
		Order: entity.Order{
			ID:            "3f2b8c44-1111-2222-3333-444455556666",
			Quantity:      2,
			Subtotal:      99.90,
			Total:         99.90,
			PaymentMethod: entity.PaymentMethodPix,
			PaymentStatus: entity.PaymentPending,
		},
		Customer:  entity.Customer{Name: "Maria", Email: "maria@example.com", TaxID: "123.456.789-09"},
		Address:   entity.ShippingAddress{Street: "Av. Paulista", Number: "1000", City: "São Paulo", State: "SP"},
		UnitPrice: 49.95,
	})
	require.NoError(t, err)

	require.Len(t, sent, 2)
	assert.Equal(t, []string{"ops1@example.com"}, sent[0].To)
	assert.Equal(t, []string{"ops2@example.com"}, sent[1].To)
	assert.Contains(t, sent[0].Subject, "3F2B8C44")
	assert.Contains(t, sent[0].Text, "Av. Paulista, 1000")
}

func TestPaymentStatusChangedReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"api key revoked"}`))
	}))
	defer srv.Close()

	client := New(Config{
		APIKey:      "re_bad",
		From:        "noreply@gyroball.com.br",
		AdminEmails: []string{"ops@example.com"},
		BaseURL:     srv.URL,
	})

	err := client.PaymentStatusChanged(context.Background(), ports.PaymentNotification{
		OrderID:       "order-1",
		PaymentStatus: entity.PaymentApproved,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}
