// Package auth holds the authorization gate, the per-request identity
// and the credential primitives (session tokens, password hashes).
package auth

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shenikar/disaster_response_system/internal/models"
)

// Identity is the authenticated caller bound to a request or push connection.
type Identity struct {
	UserID    uuid.UUID
	Username  string
	Role      models.Role
	SessionID string
}

// Present reports whether the identity was established by a login.
func (i Identity) Present() bool {
	return i.UserID != uuid.Nil
}

type Action string

const (
	ActionReportIncident       Action = "incident.report"
	ActionVerifyIncident       Action = "incident.verify"
	ActionUpdateIncidentStatus Action = "incident.status"
	ActionCreateResource       Action = "resource.create"
	ActionUpdateResourceLoad   Action = "resource.load"
	ActionCreateSOS            Action = "sos.create"
	ActionUpdateSOSStatus      Action = "sos.status"
	ActionBroadcast            Action = "broadcast.create"
	ActionCreateShelter        Action = "shelter.create"
	ActionUpdateShelter        Action = "shelter.update"
	ActionUpdateOccupancy      Action = "shelter.occupancy"
	ActionGrantRole            Action = "user.role"
	ActionRead                 Action = "read"
	ActionSubscribe            Action = "subscribe"
)

var roleRequirements = map[Action][]models.Role{
	ActionCreateResource:       {models.RoleAdmin},
	ActionUpdateResourceLoad:   {models.RoleAdmin},
	ActionGrantRole:            {models.RoleAdmin},
	ActionUpdateIncidentStatus: {models.RoleAdmin, models.RoleEmergency},
}

// Authorize decides whether id may perform action. It returns nil,
// models.ErrUnauthenticated or models.ErrForbidden and has no side effects.
func Authorize(id Identity, action Action) error {
	if !id.Present() {
		return fmt.Errorf("%s: %w", action, models.ErrUnauthenticated)
	}
	roles, restricted := roleRequirements[action]
	if !restricted {
		return nil
	}
	for _, r := range roles {
		if id.Role == r {
			return nil
		}
	}
	return fmt.Errorf("%s requires role %v: %w", action, roles, models.ErrForbidden)
}
