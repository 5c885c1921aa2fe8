package realtime

import (
	"encoding/json"
	"fmt"
	"time"
)

type EventKind string

// Server to client.
const (
	EventReady                EventKind = "ready"
	EventError                EventKind = "error"
	EventNewIncident          EventKind = "new_incident"
	EventIncidentVerified     EventKind = "incident_verified"
	EventIncidentStatusUpdate EventKind = "incident_status_update"
	EventNewResource          EventKind = "new_resource"
	EventResourceUpdated      EventKind = "resource_updated"
	EventSOSAlert             EventKind = "sos_alert"
	EventSOSStatusUpdate      EventKind = "sos_status_update"
	EventEmergencyBroadcast   EventKind = "emergency_broadcast"
	EventNewShelter           EventKind = "new_shelter"
	EventShelterUpdated       EventKind = "shelter_updated"
	EventDashboardUpdate      EventKind = "dashboard_update"
	EventUserLocationUpdate   EventKind = "user_location_update"
)

// Client to server.
const (
	MessageUpdateLocation       EventKind = "update_location"
	MessageRequestDashboardData EventKind = "request_dashboard_data"
)

// Event is the envelope written to observers.
type Event struct {
	Kind EventKind       `json:"event"`
	At   time.Time       `json:"at"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ClientMessage is a frame received from an observer.
type ClientMessage struct {
	Kind EventKind       `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEvent encodes payload once so every observer receives the same bytes.
func NewEvent(kind EventKind, payload any) (Event, error) {
	evt := Event{Kind: kind, At: time.Now().UTC()}
	if payload == nil {
		return evt, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to encode %s payload: %w", kind, err)
	}
	evt.Data = raw
	return evt, nil
}

type IncidentVerifiedPayload struct {
	IncidentID        string `json:"incident_id"`
	VerificationCount int    `json:"verification_count"`
	Version           int    `json:"version"`
}

type IncidentStatusPayload struct {
	IncidentID string `json:"incident_id"`
	Status     string `json:"status"`
	Version    int    `json:"version"`
}

type SOSStatusPayload struct {
	SOSID  string `json:"sos_id"`
	Status string `json:"status"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
