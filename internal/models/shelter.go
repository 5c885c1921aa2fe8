package models

import (
	"time"

	"github.com/google/uuid"
)

type ShelterStatus string

const (
	ShelterOperational ShelterStatus = "operational"
	ShelterLimited     ShelterStatus = "limited"
	ShelterFull        ShelterStatus = "full"
	ShelterClosed      ShelterStatus = "closed"
)

func (s ShelterStatus) Valid() bool {
	switch s {
	case ShelterOperational, ShelterLimited, ShelterFull, ShelterClosed:
		return true
	}
	return false
}

type Shelter struct {
	ID               int64              `json:"id"`
	Name             string             `json:"name"`
	Description      string             `json:"description"`
	Capacity         int                `json:"capacity"`
	CurrentOccupancy int                `json:"current_occupancy"`
	Contact          string             `json:"contact"`
	Status           ShelterStatus      `json:"status"`
	Latitude         float64            `json:"latitude"`
	Longitude        float64            `json:"longitude"`
	CreatedBy        uuid.UUID          `json:"created_by"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        *time.Time         `json:"updated_at"`
	Resources        []*ShelterResource `json:"resources"`
}

type ShelterResource struct {
	ID        int64  `json:"id"`
	ShelterID int64  `json:"shelter_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

// ShelterPatch carries a partial update. Nil fields are left untouched;
// a non-nil Resources replaces the whole resource set.
type ShelterPatch struct {
	Name        *string
	Description *string
	Capacity    *int
	Contact     *string
	Status      *ShelterStatus
	Latitude    *float64
	Longitude   *float64
	Resources   *[]*ShelterResource
}

// Empty reports whether the patch changes nothing at all.
func (p *ShelterPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Capacity == nil && p.Contact == nil &&
		p.Status == nil && p.Latitude == nil && p.Longitude == nil && p.Resources == nil
}
