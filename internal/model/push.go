package model

import "time"

// PushSubscription is one registered device. The endpoint is the natural
// key; the schema enforces uniqueness on it.
type PushSubscription struct {
	ID        int64     `json:"id"`
	Endpoint  string    `json:"endpoint"`
	P256dhKey string    `json:"p256dh_key"`
	AuthKey   string    `json:"auth_key"`
	CreatedAt time.Time `json:"created_at"`
}
