package mercadopago

import (
	"encoding/json"
	"fmt"
)

// PreferenceItem is one purchasable line inside a checkout preference.
type PreferenceItem struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id,omitempty"`
}

// BackURLs tells the gateway where to send the shopper after checkout.
type BackURLs struct {
	Success string `json:"success,omitempty"`
	Failure string `json:"failure,omitempty"`
	Pending string `json:"pending,omitempty"`
}

// PreferenceParams is the request body for preference creation.
// ExternalReference carries the order number so webhook deliveries can be
// matched back to the order.
type PreferenceParams struct {
	Items             []PreferenceItem `json:"items"`
	ExternalReference string           `json:"external_reference"`
	BackURLs          *BackURLs        `json:"back_urls,omitempty"`
	AutoReturn        string           `json:"auto_return,omitempty"`
	NotificationURL   string           `json:"notification_url,omitempty"`
}

// Preference is the created checkout preference.
type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// Payment is the gateway's view of a payment.
type Payment struct {
	ID                int64  `json:"id"`
	Status            string `json:"status"`
	StatusDetail      string `json:"status_detail"`
	ExternalReference string `json:"external_reference"`
}

// WebhookNotification is the body MercadoPago posts to the webhook endpoint.
type WebhookNotification struct {
	Type string      `json:"type"`
	Data WebhookData `json:"data"`
}

// WebhookData carries the gateway payment id referenced by a notification.
// The gateway delivers the id as a JSON string in some notification formats
// and as a bare number in others, so both shapes decode into the same field.
type WebhookData struct {
	ID string `json:"id"`
}

func (d *WebhookData) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.ID) == 0 || string(raw.ID) == "null" {
		d.ID = ""
		return nil
	}
	if raw.ID[0] == '"' {
		return json.Unmarshal(raw.ID, &d.ID)
	}

	// json.Number keeps large payment ids intact; float64 would not.
	var n json.Number
	if err := json.Unmarshal(raw.ID, &n); err != nil {
		return fmt.Errorf("webhook data id: %w", err)
	}
	d.ID = n.String()
	return nil
}

type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
}
