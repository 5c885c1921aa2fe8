package models

import (
	"time"

	"github.com/google/uuid"
)

type IncidentStatus string

const (
	IncidentActive   IncidentStatus = "active"
	IncidentResolved IncidentStatus = "resolved"
	IncidentCleared  IncidentStatus = "cleared"
	IncidentExpected IncidentStatus = "expected"
)

func (s IncidentStatus) Valid() bool {
	switch s {
	case IncidentActive, IncidentResolved, IncidentCleared, IncidentExpected:
		return true
	}
	return false
}

type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// Incident.Version starts at 1 and grows by one with every committed update.
type Incident struct {
	ID                uuid.UUID      `json:"id"`
	Type              string         `json:"type"`
	Latitude          float64        `json:"latitude"`
	Longitude         float64        `json:"longitude"`
	Description       string         `json:"description"`
	ImagePath         *string        `json:"image_path"`
	AudioPath         *string        `json:"audio_path"`
	ReportedBy        uuid.UUID      `json:"reported_by"`
	ReportedAt        time.Time      `json:"reported_at"`
	Urgency           Urgency        `json:"urgency"`
	Status            IncidentStatus `json:"status"`
	VerificationCount int            `json:"verification_count"`
	Version           int            `json:"version"`
}

// IncidentFilter narrows ListIncidents. Zero values mean "no filter",
// except Status which defaults to active.
type IncidentFilter struct {
	Type         string
	Urgency      Urgency
	Status       IncidentStatus
	ReportedFrom *time.Time
	Limit        int
}
