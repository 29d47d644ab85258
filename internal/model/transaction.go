package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Transaction statuses, in expected forward progression. Completed and
// cancelled are terminal.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusReady      = "ready"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Transaction is an order snapshot created at checkout. It is immutable
// except for status transitions. Stored both in the local cache and,
// best-effort, in the vendor's sheet.
type Transaction struct {
	ID               string            `json:"id"`
	Code             string            `json:"code"`
	KantinID         string            `json:"kantinId"`
	KantinName       string            `json:"kantinName"`
	CustomerName     string            `json:"customerName,omitempty"`
	Items            []CartItem        `json:"items"`
	Total            int64             `json:"total"`
	PaymentProof     string            `json:"paymentProof"`
	DeliveryLocation *DeliveryLocation `json:"deliveryLocation,omitempty"`
	Status           string            `json:"status"`
	// SessionID ties the order to the shopper session that placed it, for
	// push notifications. Local cache only; never mirrored remotely.
	SessionID   string    `json:"-"`
	PendingSync bool      `json:"pendingSync,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (t Transaction) Key() string { return t.ID }

func (t Transaction) CreationTime() time.Time { return t.CreatedAt }

// DecodeItems parses the encoded item list. Anything that is not a JSON
// array decodes to an empty list.
func DecodeItems(s string) []CartItem {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") {
		return []CartItem{}
	}
	var items []CartItem
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return []CartItem{}
	}
	return items
}

// DecodeLocation parses the encoded delivery location. Anything that is not
// a JSON object decodes to absent, which means take away.
func DecodeLocation(s string) *DeliveryLocation {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return nil
	}
	var loc DeliveryLocation
	if err := json.Unmarshal([]byte(s), &loc); err != nil {
		return nil
	}
	return &loc
}
