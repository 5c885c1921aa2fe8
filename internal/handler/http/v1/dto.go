package v1

import (
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/disaster_response_system/internal/models"
)

// ErrorResponse is the body of every failed request
// @Description Error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
}

// RegisterRequest DTO for creating an account
// @Description Account registration request
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

// LoginRequest DTO for opening a session
// @Description Login request
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the session token
// @Description Session token and the authenticated user
type AuthResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *UserResponse `json:"user"`
}

// UserResponse exposes the non-credential user fields
// @Description User profile
type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Phone    string    `json:"phone"`
	Role     string    `json:"role"`
}

// GrantRoleRequest DTO for changing a user's role
// @Description Role change request
type GrantRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user emergency admin"`
}

// ReportIncidentRequest is accepted as JSON or as multipart form fields
// @Description Incident report
type ReportIncidentRequest struct {
	Type        string   `json:"type" form:"type" validate:"required,max=64"`
	Latitude    *float64 `json:"latitude" form:"latitude" validate:"required"`
	Longitude   *float64 `json:"longitude" form:"longitude" validate:"required"`
	Description string   `json:"description,omitempty" form:"description"`
	Urgency     string   `json:"urgency,omitempty" form:"urgency" validate:"omitempty,oneof=low medium high critical"`
	ImagePath   *string  `json:"image_path,omitempty" form:"-"`
	AudioPath   *string  `json:"audio_path,omitempty" form:"-"`
}

// UpdateStatusRequest DTO for incident and SOS status changes
// @Description Status change request
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CreateResourceRequest DTO for registering a resource
// @Description Resource creation request
type CreateResourceRequest struct {
	Type        string   `json:"type" validate:"required,max=64"`
	Name        string   `json:"name" validate:"required,max=255"`
	Latitude    *float64 `json:"latitude" validate:"required"`
	Longitude   *float64 `json:"longitude" validate:"required"`
	Description string   `json:"description,omitempty"`
	Contact     string   `json:"contact,omitempty"`
	Capacity    int      `json:"capacity" validate:"gte=0"`
	CurrentLoad int      `json:"current_load" validate:"gte=0"`
}

// UpdateLoadRequest DTO for changing a resource's load
// @Description Resource load change
type UpdateLoadRequest struct {
	CurrentLoad *int `json:"current_load" validate:"required"`
}

// CreateSOSRequest DTO for raising an SOS alert
// @Description SOS alert request
type CreateSOSRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
	Message   string   `json:"message,omitempty" validate:"max=2000"`
}

// CreateBroadcastRequest DTO for an emergency broadcast
// @Description Emergency broadcast request
type CreateBroadcastRequest struct {
	Message   string     `json:"message" validate:"required,max=2000"`
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	Radius    *float64   `json:"radius,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// ShelterResourceRequest is one supply line of a shelter
// @Description Shelter supply line
type ShelterResourceRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

// CreateShelterRequest DTO for registering a shelter
// @Description Shelter creation request
type CreateShelterRequest struct {
	Name        string                   `json:"name" validate:"required,max=255"`
	Description string                   `json:"description" validate:"required"`
	Capacity    *int                     `json:"capacity" validate:"required,gte=0"`
	Contact     string                   `json:"contact,omitempty"`
	Status      string                   `json:"status" validate:"required,oneof=operational limited full closed"`
	Latitude    *float64                 `json:"latitude" validate:"required"`
	Longitude   *float64                 `json:"longitude" validate:"required"`
	Resources   []ShelterResourceRequest `json:"resources,omitempty" validate:"dive"`
}

// UpdateShelterRequest DTO for a partial shelter update
// @Description Partial shelter update, absent fields are unchanged
type UpdateShelterRequest struct {
	Name        *string                   `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string                   `json:"description,omitempty"`
	Capacity    *int                      `json:"capacity,omitempty" validate:"omitempty,gte=0"`
	Contact     *string                   `json:"contact,omitempty"`
	Status      *string                   `json:"status,omitempty" validate:"omitempty,oneof=operational limited full closed"`
	Latitude    *float64                  `json:"latitude,omitempty"`
	Longitude   *float64                  `json:"longitude,omitempty"`
	Resources   *[]ShelterResourceRequest `json:"resources,omitempty" validate:"omitempty,dive"`
}

// UpdateOccupancyRequest DTO for changing a shelter's occupancy
// @Description Occupancy change
type UpdateOccupancyRequest struct {
	Occupancy *int `json:"occupancy" validate:"required"`
}

// PresenceResponse lists connected users
// @Description Users with a live push connection
type PresenceResponse struct {
	Online      []uuid.UUID `json:"online"`
	Connections int         `json:"connections"`
}

// Responses reuse the domain models directly; they carry json tags already.
type (
	IncidentResponse  = models.Incident
	ResourceResponse  = models.Resource
	SOSResponse       = models.SOSAlert
	BroadcastResponse = models.Broadcast
	ShelterResponse   = models.Shelter
	DashboardResponse = models.DashboardSummary
)
