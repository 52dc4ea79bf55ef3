package ports

import "context"

// PreferenceRequest is the checkout-session creation request sent to the
// payment gateway. Field names follow the gateway's wire format so the
// client adapter can marshal it directly.
type PreferenceRequest struct {
	Items               []PreferenceItem   `json:"items"`
	Payer               PreferencePayer    `json:"payer"`
	BackURLs            BackURLs           `json:"back_urls"`
	AutoReturn          string             `json:"auto_return"`
	PaymentMethods      PaymentMethodRules `json:"payment_methods"`
	NotificationURL     string             `json:"notification_url"`
	ExternalReference   string             `json:"external_reference"`
	StatementDescriptor string             `json:"statement_descriptor"`
}

type PreferenceItem struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	CurrencyID  string  `json:"currency_id"`
}

type PreferencePayer struct {
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	Identification Identification `json:"identification"`
	Phone          Phone          `json:"phone"`
	Address        PayerAddress   `json:"address"`
}

type Identification struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

type Phone struct {
	Number string `json:"number"`
}

type PayerAddress struct {
	ZipCode      string `json:"zip_code"`
	StreetName   string `json:"street_name"`
	StreetNumber string `json:"street_number"`
	City         string `json:"city"`
	FederalUnit  string `json:"federal_unit"`
}

type BackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type PaymentMethodRules struct {
	ExcludedPaymentTypes []ExcludedPaymentType `json:"excluded_payment_types"`
	Installments         int                   `json:"installments"`
}

type ExcludedPaymentType struct {
	ID string `json:"id"`
}

// Preference is the gateway's view of a created checkout session.
// InitPoint is the production checkout URL, SandboxInitPoint the test one.
type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

type PreferenceGateway interface {
	CreatePreference(ctx context.Context, req *PreferenceRequest) (*Preference, error)
}
