package v1

import (
	"github.com/shenikar/disaster_response_system/internal/models"
	"github.com/shenikar/disaster_response_system/internal/service"
)

func ModelToUserResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Phone:    user.Phone,
		Role:     string(user.Role),
	}
}

func AuthResultToResponse(res *service.AuthResult) *AuthResponse {
	return &AuthResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      ModelToUserResponse(res.User),
	}
}

func DTOToReportIncidentInput(dto ReportIncidentRequest) service.ReportIncidentInput {
	return service.ReportIncidentInput{
		Type:        dto.Type,
		Latitude:    dto.Latitude,
		Longitude:   dto.Longitude,
		Description: dto.Description,
		Urgency:     dto.Urgency,
		ImagePath:   dto.ImagePath,
		AudioPath:   dto.AudioPath,
	}
}

func DTOToCreateResourceInput(dto CreateResourceRequest) service.CreateResourceInput {
	return service.CreateResourceInput{
		Type:        dto.Type,
		Name:        dto.Name,
		Latitude:    dto.Latitude,
		Longitude:   dto.Longitude,
		Description: dto.Description,
		Contact:     dto.Contact,
		Capacity:    dto.Capacity,
		CurrentLoad: dto.CurrentLoad,
	}
}

func DTOToCreateBroadcastInput(dto CreateBroadcastRequest) service.CreateBroadcastInput {
	return service.CreateBroadcastInput{
		Message:   dto.Message,
		Latitude:  dto.Latitude,
		Longitude: dto.Longitude,
		Radius:    dto.Radius,
		ExpiresAt: dto.ExpiresAt,
	}
}

func DTOToShelterResources(dtos []ShelterResourceRequest) []*models.ShelterResource {
	out := make([]*models.ShelterResource, len(dtos))
	for i, d := range dtos {
		out[i] = &models.ShelterResource{Name: d.Name, Quantity: d.Quantity}
	}
	return out
}

func DTOToCreateShelterInput(dto CreateShelterRequest) service.CreateShelterInput {
	return service.CreateShelterInput{
		Name:        dto.Name,
		Description: dto.Description,
		Capacity:    dto.Capacity,
		Contact:     dto.Contact,
		Status:      dto.Status,
		Latitude:    dto.Latitude,
		Longitude:   dto.Longitude,
		Resources:   DTOToShelterResources(dto.Resources),
	}
}

// DTOToShelterPatch keeps absent fields nil so they are left unchanged.
func DTOToShelterPatch(dto UpdateShelterRequest) models.ShelterPatch {
	patch := models.ShelterPatch{
		Name:        dto.Name,
		Description: dto.Description,
		Capacity:    dto.Capacity,
		Contact:     dto.Contact,
		Latitude:    dto.Latitude,
		Longitude:   dto.Longitude,
	}
	if dto.Status != nil {
		status := models.ShelterStatus(*dto.Status)
		patch.Status = &status
	}
	if dto.Resources != nil {
		resources := DTOToShelterResources(*dto.Resources)
		patch.Resources = &resources
	}
	return patch
}
