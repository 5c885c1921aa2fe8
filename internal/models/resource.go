package models

import (
	"time"

	"github.com/google/uuid"
)

type ResourceStatus string

const (
	ResourceOperational ResourceStatus = "operational"
	ResourceLimited     ResourceStatus = "limited"
	ResourceOffline     ResourceStatus = "offline"
)

type Resource struct {
	ID          uuid.UUID      `json:"id"`
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Latitude    float64        `json:"latitude"`
	Longitude   float64        `json:"longitude"`
	Description string         `json:"description"`
	Contact     string         `json:"contact"`
	Capacity    int            `json:"capacity"`
	CurrentLoad int            `json:"current_load"`
	Status      ResourceStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Available returns the remaining capacity of the resource.
func (r *Resource) Available() int {
	return r.Capacity - r.CurrentLoad
}
