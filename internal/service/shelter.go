package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shenikar/disaster_response_system/internal/auth"
	"github.com/shenikar/disaster_response_system/internal/models"
	"github.com/shenikar/disaster_response_system/internal/realtime"
	"github.com/sirupsen/logrus"
)

// ShelterRepository persists shelters together with their resource lines.
// Update and UpdateOccupancy lock the shelter row for the whole transaction.
type ShelterRepository interface {
	Create(ctx context.Context, shelter *models.Shelter) error
	GetByID(ctx context.Context, id int64) (*models.Shelter, error)
	List(ctx context.Context, status models.ShelterStatus) ([]*models.Shelter, error)
	Update(ctx context.Context, id int64, patch models.ShelterPatch) (*models.Shelter, error)
	UpdateOccupancy(ctx context.Context, id int64, occupancy int) (*models.Shelter, error)
}

type CreateShelterInput struct {
	Name        string
	Description string
	Capacity    *int
	Contact     string
	Status      string
	Latitude    *float64
	Longitude   *float64
	Resources   []*models.ShelterResource
}

type ShelterService interface {
	CreateShelter(ctx context.Context, input CreateShelterInput) (*models.Shelter, error)
	UpdateShelter(ctx context.Context, id int64, patch models.ShelterPatch) (*models.Shelter, error)
	UpdateOccupancy(ctx context.Context, id int64, occupancy int) (*models.Shelter, error)
	GetShelter(ctx context.Context, id int64) (*models.Shelter, error)
	ListShelters(ctx context.Context, status string) ([]*models.Shelter, error)
}

type shelterService struct {
	repo      ShelterRepository
	publisher realtime.Publisher
	logger    *logrus.Logger
}

func NewShelterService(repo ShelterRepository, publisher realtime.Publisher, logger *logrus.Logger) ShelterService {
	return &shelterService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *shelterService) CreateShelter(ctx context.Context, input CreateShelterInput) (*models.Shelter, error) {
	caller := auth.IdentityFromContext(ctx)
	log := s.logger.WithFields(logrus.Fields{
		"service": "shelter",
		"method":  "CreateShelter",
		"name":    input.Name,
		"user_id": caller.UserID,
	})
	log.Info("Attempting to create a new shelter")

	shelter, err := newShelter(input)
	if err != nil {
		log.WithError(err).Warn("Shelter rejected")
		return nil, err
	}
	if err := auth.Authorize(caller, auth.ActionCreateShelter); err != nil {
		log.WithError(err).Warn("Shelter creation not authorized")
		return nil, err
	}
	shelter.CreatedBy = caller.UserID

	if err := s.repo.Create(ctx, shelter); err != nil {
		log.WithError(err).Error("Failed to create shelter in repository")
		return nil, fmt.Errorf("service: could not create shelter: %w", err)
	}

	log.WithField("shelter_id", shelter.ID).Info("Shelter created successfully")
	s.publisher.Publish(ctx, realtime.EventNewShelter, shelter)
	return shelter, nil
}

func newShelter(input CreateShelterInput) (*models.Shelter, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, models.NewValidationError("name", "is required")
	}
	if input.Capacity == nil {
		return nil, models.NewValidationError("capacity", "is required")
	}
	if *input.Capacity < 0 {
		return nil, models.NewValidationError("capacity", "cannot be negative")
	}
	status := models.ShelterStatus(input.Status)
	if !status.Valid() {
		return nil, models.NewValidationError("status", "must be one of operational, limited, full, closed")
	}
	lat, lon, err := coordinates(input.Latitude, input.Longitude)
	if err != nil {
		return nil, err
	}
	if err := checkShelterResources(input.Resources); err != nil {
		return nil, err
	}
	return &models.Shelter{
		Name:        name,
		Description: input.Description,
		Capacity:    *input.Capacity,
		Contact:     input.Contact,
		Status:      status,
		Latitude:    lat,
		Longitude:   lon,
		Resources:   input.Resources,
	}, nil
}

func checkShelterResources(resources []*models.ShelterResource) error {
	for i, r := range resources {
		if r == nil || strings.TrimSpace(r.Name) == "" {
			return models.NewValidationError(fmt.Sprintf("resources[%d].name", i), "is required")
		}
		if r.Quantity < 0 {
			return models.NewValidationError(fmt.Sprintf("resources[%d].quantity", i), "cannot be negative")
		}
	}
	return nil
}

func checkShelterPatch(patch models.ShelterPatch) error {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return models.NewValidationError("name", "cannot be empty")
	}
	if patch.Capacity != nil && *patch.Capacity < 0 {
		return models.NewValidationError("capacity", "cannot be negative")
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return models.NewValidationError("status", "must be one of operational, limited, full, closed")
	}
	if patch.Latitude != nil && (*patch.Latitude < -90 || *patch.Latitude > 90) {
		return models.NewValidationError("latitude", "must be between -90 and 90")
	}
	if patch.Longitude != nil && (*patch.Longitude < -180 || *patch.Longitude > 180) {
		return models.NewValidationError("longitude", "must be between -180 and 180")
	}
	if patch.Resources != nil {
		return checkShelterResources(*patch.Resources)
	}
	return nil
}

// UpdateShelter applies a partial update. A supplied resource list replaces
// the existing one entirely.
func (s *shelterService) UpdateShelter(ctx context.Context, id int64, patch models.ShelterPatch) (*models.Shelter, error) {
	caller := auth.IdentityFromContext(ctx)
	log := s.logger.WithFields(logrus.Fields{
		"service":    "shelter",
		"method":     "UpdateShelter",
		"shelter_id": id,
		"user_id":    caller.UserID,
	})
	log.Info("Attempting to update shelter")

	if err := checkShelterPatch(patch); err != nil {
		log.WithError(err).Warn("Shelter update rejected")
		return nil, err
	}
	if err := auth.Authorize(caller, auth.ActionUpdateShelter); err != nil {
		log.WithError(err).Warn("Shelter update not authorized")
		return nil, err
	}

	if patch.Empty() {
		shelter, err := s.repo.GetByID(ctx, id)
		if err != nil {
			log.WithError(err).Warn("Failed to get shelter")
			return nil, fmt.Errorf("service: could not get shelter %d: %w", id, err)
		}
		log.Info("Empty shelter patch, nothing to update")
		return shelter, nil
	}

	shelter, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		log.WithError(err).Warn("Failed to update shelter")
		return nil, fmt.Errorf("service: could not update shelter %d: %w", id, err)
	}

	log.Info("Shelter updated successfully")
	s.publisher.Publish(ctx, realtime.EventShelterUpdated, shelter)
	return shelter, nil
}

// UpdateOccupancy sets the number of people in a shelter, bounded by its capacity.
func (s *shelterService) UpdateOccupancy(ctx context.Context, id int64, occupancy int) (*models.Shelter, error) {
	caller := auth.IdentityFromContext(ctx)
	log := s.logger.WithFields(logrus.Fields{
		"service":    "shelter",
		"method":     "UpdateOccupancy",
		"shelter_id": id,
		"occupancy":  occupancy,
		"user_id":    caller.UserID,
	})

	if occupancy < 0 {
		return nil, models.NewValidationError("occupancy", "cannot be negative")
	}
	if err := auth.Authorize(caller, auth.ActionUpdateOccupancy); err != nil {
		log.WithError(err).Warn("Occupancy update not authorized")
		return nil, err
	}

	shelter, err := s.repo.UpdateOccupancy(ctx, id, occupancy)
	if err != nil {
		log.WithError(err).Warn("Failed to update occupancy")
		return nil, fmt.Errorf("service: could not update occupancy of shelter %d: %w", id, err)
	}

	log.Info("Shelter occupancy updated")
	s.publisher.Publish(ctx, realtime.EventShelterUpdated, shelter)
	return shelter, nil
}

func (s *shelterService) GetShelter(ctx context.Context, id int64) (*models.Shelter, error) {
	shelter, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not get shelter %d: %w", id, err)
	}
	return shelter, nil
}

// ListShelters returns all shelters, or those with the given status.
// "all" and "" disable the filter.
func (s *shelterService) ListShelters(ctx context.Context, status string) ([]*models.Shelter, error) {
	var filter models.ShelterStatus
	if status != "" && status != "all" {
		filter = models.ShelterStatus(status)
		if !filter.Valid() {
			return nil, models.NewValidationError("status", "must be all or one of operational, limited, full, closed")
		}
	}
	shelters, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.WithError(err).WithField("method", "ListShelters").Error("Failed to list shelters")
		return nil, fmt.Errorf("service: could not list shelters: %w", err)
	}
	return shelters, nil
}
