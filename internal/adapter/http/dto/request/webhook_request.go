package request

import "strings"

// WebhookRequest is the Mercado Pago notification envelope. Only the fields
// used for reconciliation are bound; the raw body is preserved separately.

type WebhookRequest struct {
	ID                any    `json:"id"`
	LiveMode          bool   `json:"live_mode"`
	Type              string `json:"type"`
	Action            string `json:"action"`
	DateCreated       string `json:"date_created"`
	ExternalReference string `json:"external_reference"`
	Status            string `json:"status"`
	Data              struct {
		ID string `json:"id"`
	} `json:"data"`
}

// ResolvePaymentID prefers the external reference, which the checkout sets to
// the internal payment id, then falls back to data.id.
func (r WebhookRequest) ResolvePaymentID() string {
	if v := strings.TrimSpace(r.ExternalReference); v != "" {
		return v
	}
	return strings.TrimSpace(r.Data.ID)
}
