package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyroball/checkout/internal/checkout/app"
	"github.com/gyroball/checkout/internal/checkout/core/domain/entity"
)

type fakeService struct {
	submitResult *app.SubmissionResult
	submitErr    error
	lastSubmit   *app.SubmissionRequest

	reconcileOutcome app.ReconcileOutcome
	reconcileErr     error
	lastNotification *app.Notification

	listDetails  []entity.OrderDetail
	listErr      error
	lastCustomer string
	lastOrder    string
}

func (f *fakeService) SubmitOrder(_ context.Context, req app.SubmissionRequest) (*app.SubmissionResult, error) {
	f.lastSubmit = &req
	return f.submitResult, f.submitErr
}

func (f *fakeService) Reconcile(_ context.Context, n app.Notification) (app.ReconcileOutcome, error) {
	f.lastNotification = &n
	return f.reconcileOutcome, f.reconcileErr
}

func (f *fakeService) ListOrders(_ context.Context, customerID, orderID string) ([]entity.OrderDetail, error) {
	f.lastCustomer, f.lastOrder = customerID, orderID
	return f.listDetails, f.listErr
}

func serve(svc *fakeService, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	NewRouter(NewHandler(svc)).ServeHTTP(rec, req)
	return rec
}

const submissionBody = `{
	"name": "Maria Souza",
	"email": "maria@example.com",
	"cpf": "123.456.789-09",
	"phone": "(11) 99999-0000",
	"cep": "01310-100",
	"street": "Av. Paulista",
	"number": "1000",
	"neighborhood": "Bela Vista",
	"city": "São Paulo",
	"state": "SP",
	"quantity": 1,
	"subtotal": 99.90,
	"shippingCost": 0,
	"total": 99.90,
	"paymentMethod": "pix"
}`

func TestCreateOrderSuccess(t *testing.T) {
	svc := &fakeService{
		submitResult: &app.SubmissionResult{
			OrderID:    "ord-1",
			Message:    "Pedido criado com sucesso!",
			PaymentURL: "https://mp.example/init",
			Payment: app.PaymentSummary{
				PreferenceID:     "pref-1",
				InitPoint:        "https://mp.example/init",
				SandboxInitPoint: "https://mp.example/sandbox",
			},
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(submissionBody))
	rec := serve(svc, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp CreateOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "ord-1", resp.OrderID)
	assert.Equal(t, "pref-1", resp.Payment.PreferenceID)
	assert.Equal(t, "https://mp.example/init", resp.PaymentURL)

	require.NotNil(t, svc.lastSubmit)
	assert.Equal(t, "123.456.789-09", svc.lastSubmit.TaxID)
	assert.Equal(t, 99.90, svc.lastSubmit.Total)
}

func TestCreateOrderInvalidJSON(t *testing.T) {
	svc := &fakeService{}
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader("{not json"))
	rec := serve(svc, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, svc.lastSubmit)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestCreateOrderValidation(t *testing.T) {
	cases := []struct {
		name  string
		patch map[string]any
	}{
		{"missing cpf", map[string]any{"cpf": ""}},
		{"zero quantity", map[string]any{"quantity": 0}},
		{"zero total", map[string]any{"total": 0}},
		{"bad payment method", map[string]any{"paymentMethod": "boleto"}},
		{"missing street", map[string]any{"street": ""}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body map[string]any
			require.NoError(t, json.Unmarshal([]byte(submissionBody), &body))
			for k, v := range tc.patch {
				body[k] = v
			}
			encoded, err := json.Marshal(body)
			require.NoError(t, err)

			svc := &fakeService{}
			req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(string(encoded)))
			rec := serve(svc, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, svc.lastSubmit, "service must not be called on invalid input")
		})
	}
}

func TestCreateOrderServiceError(t *testing.T) {
	svc := &fakeService{submitErr: errors.New("db unavailable")}
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(submissionBody))
	rec := serve(svc, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetOrdersPassesFilters(t *testing.T) {
	now := time.Now().UTC()
	svc := &fakeService{
		listDetails: []entity.OrderDetail{{
			Order: entity.Order{
				ID:                "ord-1",
				Quantity:          1,
				Total:             99.90,
				PaymentMethod:     entity.PaymentMethodPix,
				PaymentStatus:     entity.PaymentApproved,
				FulfillmentStatus: entity.FulfillmentProcessing,
				PaymentIntentID:   "pref-1",
				CreatedAt:         now,
				UpdatedAt:         now,
			},
			Customer: entity.Customer{ID: "cust-1", Name: "Maria Souza", Email: "maria@example.com", TaxID: "12345678909"},
			Address:  entity.ShippingAddress{Street: "Av. Paulista", City: "São Paulo", State: "SP"},
		}},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/orders?customerId=cust-1&orderId=ord-1", nil)
	rec := serve(svc, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cust-1", svc.lastCustomer)
	assert.Equal(t, "ord-1", svc.lastOrder)

	var resp ListOrdersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, "approved", resp.Orders[0].PaymentStatus)
	assert.Equal(t, "processing", resp.Orders[0].FulfillmentStatus)
	assert.Equal(t, "Maria Souza", resp.Orders[0].Customer.Name)
	assert.Equal(t, "Av. Paulista", resp.Orders[0].Address.Street)
}

func TestGetOrdersEmptyList(t *testing.T) {
	svc := &fakeService{}
	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	rec := serve(svc, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ListOrdersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)
}

func TestWebhookUpdated(t *testing.T) {
	svc := &fakeService{reconcileOutcome: app.ReconcileUpdated}

	body := `{"type":"payment","data":{"id":"pref-1","status":"approved"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/mercadopago", strings.NewReader(body))
	req.Header.Set("x-signature", "ts=1,v1=abc")
	rec := serve(svc, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastNotification)
	assert.Equal(t, "payment", svc.lastNotification.Type)
	assert.Equal(t, "pref-1", svc.lastNotification.Data.ID)

	var ack WebhookAck
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	assert.True(t, ack.Success)
	assert.Empty(t, ack.Note)
}

func TestWebhookUnknownIntentStillAcknowledged(t *testing.T) {
	svc := &fakeService{reconcileOutcome: app.ReconcileUnknownIntent}

	body := `{"type":"payment","data":{"id":"missing","status":"approved"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/mercadopago", strings.NewReader(body))
	rec := serve(svc, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var ack WebhookAck
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	assert.True(t, ack.Success)
	assert.Equal(t, "no matching order", ack.Note)
}

func TestWebhookUpdateFailureReturns500(t *testing.T) {
	svc := &fakeService{reconcileErr: errors.New("db unavailable")}

	body := `{"type":"payment","data":{"id":"pref-1","status":"approved"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/mercadopago", strings.NewReader(body))
	rec := serve(svc, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := serve(&fakeService{}, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
