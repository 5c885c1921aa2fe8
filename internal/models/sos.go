package models

import (
	"time"

	"github.com/google/uuid"
)

type SOSStatus string

const (
	SOSActive   SOSStatus = "active"
	SOSResolved SOSStatus = "resolved"
)

func (s SOSStatus) Valid() bool {
	return s == SOSActive || s == SOSResolved
}

type SOSAlert struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Message   string    `json:"message"`
	Status    SOSStatus `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
