package models

import "encoding/json"

const EventChargeSuccess = "charge.success"

type WebhookEvent struct {
	Event string           `json:"event"`
	Data  WebhookEventData `json:"data"`
}

type WebhookEventData struct {
	Reference string          `json:"reference"`
	Amount    int64           `json:"amount"`
	Currency  string          `json:"currency,omitempty"`
	Status    string          `json:"status,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}
