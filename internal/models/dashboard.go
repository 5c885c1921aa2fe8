package models

import "time"

const (
	DashboardRecentIncidents  = 5
	DashboardRecentBroadcasts = 10
)

// DashboardSummary is the cross-entity view assembled on every request.
type DashboardSummary struct {
	ActiveIncidents      int                    `json:"active_incidents"`
	RecentIncidents      []*Incident            `json:"recent_incidents"`
	ActiveSOSCount       int                    `json:"sos_alerts"`
	ActiveSOSAlerts      []*SOSAlert            `json:"active_sos_alerts"`
	AvailableResources   int                    `json:"available_resources"`
	ResourceAvailability []ResourceAvailability `json:"resource_availability"`
	EmergencyBroadcasts  []string               `json:"emergency_broadcasts"`
	GeneratedAt          time.Time              `json:"generated_at"`
}

type ResourceAvailability struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
}
