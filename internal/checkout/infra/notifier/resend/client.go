// Package resend dispatches operator emails through the Resend HTTP API.
// Template rendering is deliberately minimal: the notification contract is
// "operators learn about the order", not a marketing surface.
package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gyroball/checkout/internal/checkout/core/domain/entity"
	"github.com/gyroball/checkout/internal/checkout/core/ports"
)

const defaultBaseURL = "https://api.resend.com"

type Config struct {
	APIKey string
	// From is the sender, e.g. "Gyroball Pro <noreply@gyroball.com.br>".
	From string
	// AdminEmails is the operator distribution list. One message is sent
	// per address, matching how the gateway's dashboard notifies.
	AdminEmails []string
	BaseURL     string
	Timeout     time.Duration
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	from       string
	admins     []string
}

var _ ports.Notifier = (*Client)(nil)

func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		from:       cfg.From,
		admins:     cfg.AdminEmails,
	}
}

func (c *Client) OrderCreated(ctx context.Context, n ports.OrderNotification) error {
	subject := fmt.Sprintf("Novo pedido #%s", orderNumber(n.Order.ID))

	var b strings.Builder
	fmt.Fprintf(&b, "Novo pedido recebido.\n\n")
	fmt.Fprintf(&b, "Pedido: %s\n", n.Order.ID)
	fmt.Fprintf(&b, "Cliente: %s <%s>\n", n.Customer.Name, n.Customer.Email)
	fmt.Fprintf(&b, "CPF: %s  Telefone: %s\n\n", n.Customer.TaxID, n.Customer.Phone)
	fmt.Fprintf(&b, "Entrega: %s, %s", n.Address.Street, n.Address.Number)
	if n.Address.Complement != "" {
		fmt.Fprintf(&b, " - %s", n.Address.Complement)
	}
	fmt.Fprintf(&b, "\n%s, %s - %s, CEP %s\n\n", n.Address.Neighborhood, n.Address.City, n.Address.State, n.Address.PostalCode)
	fmt.Fprintf(&b, "Quantidade: %d x R$ %.2f\n", n.Order.Quantity, n.UnitPrice)
	fmt.Fprintf(&b, "Subtotal: R$ %.2f  Frete: R$ %.2f  Total: R$ %.2f\n", n.Order.Subtotal, n.Order.ShippingCost, n.Order.Total)
	fmt.Fprintf(&b, "Pagamento: %s (%s)\n", paymentMethodLabel(n.Order.PaymentMethod), n.Order.PaymentStatus)

	return c.sendToAdmins(ctx, subject, b.String())
}

func (c *Client) PaymentStatusChanged(ctx context.Context, n ports.PaymentNotification) error {
	subject := fmt.Sprintf("Pagamento %s - pedido #%s", n.PaymentStatus, orderNumber(n.OrderID))

	var b strings.Builder
	fmt.Fprintf(&b, "Atualização de pagamento.\n\n")
	fmt.Fprintf(&b, "Pedido: %s\n", n.OrderID)
	fmt.Fprintf(&b, "Cliente: %s <%s>\n", n.CustomerName, n.CustomerEmail)
	fmt.Fprintf(&b, "Status: %s\n", n.PaymentStatus)
	fmt.Fprintf(&b, "Método: %s  Valor: R$ %.2f\n", paymentMethodLabel(n.PaymentMethod), n.Amount)
	fmt.Fprintf(&b, "Id no gateway: %s\n", n.PaymentIntentID)

	return c.sendToAdmins(ctx, subject, b.String())
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

// sendToAdmins sends one email per operator address. Individual failures
// are joined so a single unreachable mailbox does not hide the others.
func (c *Client) sendToAdmins(ctx context.Context, subject, text string) error {
	var errs []error
	for _, admin := range c.admins {
		if err := c.send(ctx, sendRequest{
			From:    c.from,
			To:      []string{admin},
			Subject: subject,
			Text:    text,
		}); err != nil {
			errs = append(errs, fmt.Errorf("send to %s: %w", admin, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Client) send(ctx context.Context, req sendRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("resend: marshal email: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("resend: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("resend: send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("resend: send email: status %d: %s", resp.StatusCode, detail)
	}
	return nil
}

// orderNumber is the short human-facing form of an order id.
func orderNumber(orderID string) string {
	if len(orderID) <= 8 {
		return strings.ToUpper(orderID)
	}
	return strings.ToUpper(orderID[:8])
}

func paymentMethodLabel(m entity.PaymentMethod) string {
	if m == entity.PaymentMethodPix {
		return "PIX"
	}
	return "Cartão de Crédito"
}
