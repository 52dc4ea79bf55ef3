package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gyroball/checkout/internal/checkout/app"
	"github.com/gyroball/checkout/internal/checkout/core/domain/entity"
)

// CheckoutService is the use-case surface the HTTP layer needs.
type CheckoutService interface {
	SubmitOrder(ctx context.Context, req app.SubmissionRequest) (*app.SubmissionResult, error)
	Reconcile(ctx context.Context, n app.Notification) (app.ReconcileOutcome, error)
	ListOrders(ctx context.Context, customerID, orderID string) ([]entity.OrderDetail, error)
}

// Handler handles incoming HTTP requests for the checkout domain.
type Handler struct {
	service CheckoutService
}

func NewHandler(service CheckoutService) *Handler {
	return &Handler{service: service}
}

// CreateOrder receives the storefront submission, persists the order and
// opens a payment preference with the gateway.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req app.SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if msg := validateSubmission(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	result, err := h.service.SubmitOrder(r.Context(), req)
	if err != nil {
		slog.ErrorContext(r.Context(), "order submission failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	writeJSON(w, http.StatusOK, CreateOrderResponse{
		Success:    true,
		OrderID:    result.OrderID,
		Payment:    result.Payment,
		PaymentURL: result.PaymentURL,
		Message:    result.Message,
	})
}

// GetOrders lists orders, optionally filtered by customerId and/or orderId
// query parameters.
func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	customerID := r.URL.Query().Get("customerId")
	orderID := r.URL.Query().Get("orderId")

	details, err := h.service.ListOrders(r.Context(), customerID, orderID)
	if err != nil {
		slog.ErrorContext(r.Context(), "order query failed",
			"customer_id", customerID, "order_id", orderID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch orders")
		return
	}

	writeJSON(w, http.StatusOK, ListOrdersResponse{
		Success: true,
		Count:   len(details),
		Orders:  mapOrderDetails(details),
	})
}

// Webhook receives payment notifications from the gateway. Everything except
// a failed status write is acknowledged with 200 so the gateway stops
// retrying deliveries this service cannot act on.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	// TODO: validate x-signature with the webhook secret once it is
	// provisioned in the gateway dashboard.
	slog.InfoContext(r.Context(), "webhook received",
		"x_signature", r.Header.Get("x-signature"),
		"x_request_id", r.Header.Get("x-request-id"),
	)

	var n app.Notification
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	outcome, err := h.service.Reconcile(r.Context(), n)
	if err != nil {
		slog.ErrorContext(r.Context(), "webhook reconciliation failed",
			"payment_id", n.Data.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to process notification")
		return
	}

	ack := WebhookAck{Success: true}
	switch outcome {
	case app.ReconcileIgnored:
		ack.Note = "notification type ignored"
	case app.ReconcileUnknownIntent:
		ack.Note = "no matching order"
	}
	writeJSON(w, http.StatusOK, ack)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func validateSubmission(req app.SubmissionRequest) string {
	switch {
	case req.Name == "" || req.Email == "" || req.TaxID == "":
		return "name, email and cpf are required"
	case req.PostalCode == "" || req.Street == "" || req.Number == "" || req.City == "" || req.State == "":
		return "shipping address is incomplete"
	case req.Quantity <= 0:
		return "quantity must be positive"
	case req.Total <= 0:
		return "total must be positive"
	case req.PaymentMethod != string(entity.PaymentMethodPix) && req.PaymentMethod != string(entity.PaymentMethodCard):
		return "paymentMethod must be pix or card"
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Success: false, Error: msg})
}
