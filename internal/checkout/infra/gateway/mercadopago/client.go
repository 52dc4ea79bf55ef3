// Package mercadopago is a thin typed client for the Mercado Pago
// checkout-preference API. Only the single endpoint this service needs is
// wrapped; payment-method internals (PIX QR codes, card tokenization) are
// the gateway's business.
package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gyroball/checkout/internal/checkout/core/ports"
)

const defaultBaseURL = "https://api.mercadopago.com"

// Config carries the gateway credentials and connection settings.
type Config struct {
	AccessToken string
	// BaseURL overrides the production API host, used in tests.
	BaseURL string
	// Timeout bounds the whole request. The gateway call sits on the
	// synchronous order-submission path, so it must be short.
	Timeout time.Duration
}

type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
}

var _ ports.PreferenceGateway = (*Client)(nil)

func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		accessToken: cfg.AccessToken,
	}
}

// CreatePreference creates a checkout session and returns its id plus the
// production and sandbox checkout URLs.
func (c *Client) CreatePreference(ctx context.Context, req *ports.PreferenceRequest) (*ports.Preference, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: marshal preference: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/checkout/preferences", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("mercadopago: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: create preference: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("mercadopago: create preference: status %d: %s", resp.StatusCode, detail)
	}

	var pref ports.Preference
	if err := json.NewDecoder(resp.Body).Decode(&pref); err != nil {
		return nil, fmt.Errorf("mercadopago: decode preference response: %w", err)
	}
	if pref.ID == "" {
		return nil, fmt.Errorf("mercadopago: preference response missing id")
	}
	return &pref, nil
}
