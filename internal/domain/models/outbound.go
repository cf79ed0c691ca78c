package models

import (
	"encoding/json"
	"strings"
)

// OutboundMessageRequest is a message to push over WhatsApp. An empty To
// means the owner number.
type OutboundMessageRequest struct {
	To         string `json:"to"`
	Message    string `json:"message"`
	PreviewURL bool   `json:"preview_url"`
}

// FieldUpdateRequest carries a single field-level edit coming from a form.
type FieldUpdateRequest struct {
	Field string    `json:"field" binding:"required"`
	Value FormValue `json:"value"`
}

// FormValue is a form input kept as text. Clients may send it as a JSON
// string or number; null reads as blank.
type FormValue string

func (v *FormValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = FormValue(s)
		return nil
	}
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		raw = ""
	}
	*v = FormValue(raw)
	return nil
}

// SaleRequest is the payload for recording a sale against a batch.
type SaleRequest struct {
	GramsAmount *float64 `json:"gramsAmount" binding:"required"`
	TotalPrice  *float64 `json:"totalPrice" binding:"required"`
}
