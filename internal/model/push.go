package model

import "time"

// PushSubscription is a web push endpoint registered by a shopper session so
// it can be told when an order's status changes.
type PushSubscription struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Endpoint  string    `json:"endpoint"`
	P256dhKey string    `json:"p256dh_key"`
	AuthKey   string    `json:"auth_key"`
	CreatedAt time.Time `json:"created_at"`
}
