package models

import (
	"time"

	"github.com/google/uuid"
)

const DefaultBroadcastRadius = 5.0

// Broadcast is an emergency message. ExpiresAt is stored but never enforced.
type Broadcast struct {
	ID        uuid.UUID  `json:"id"`
	SenderID  uuid.UUID  `json:"sender_id"`
	Message   string     `json:"message"`
	Latitude  *float64   `json:"latitude"`
	Longitude *float64   `json:"longitude"`
	Radius    float64    `json:"radius"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at"`
}
