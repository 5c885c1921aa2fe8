package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shenikar/disaster_response_system/internal/auth"
	"github.com/shenikar/disaster_response_system/internal/models"
	"github.com/shenikar/disaster_response_system/internal/realtime"
	"github.com/sirupsen/logrus"
)

type ResourceRepository interface {
	Create(ctx context.Context, resource *models.Resource) error
	UpdateLoad(ctx context.Context, id uuid.UUID, load int) (*models.Resource, error)
	ListOperational(ctx context.Context, resourceType string) ([]*models.Resource, error)
}

type CreateResourceInput struct {
	Type        string
	Name        string
	Latitude    *float64
	Longitude   *float64
	Description string
	Contact     string
	Capacity    int
	CurrentLoad int
}

type ResourceService interface {
	CreateResource(ctx context.Context, input CreateResourceInput) (*models.Resource, error)
	UpdateResourceLoad(ctx context.Context, id uuid.UUID, load int) (*models.Resource, error)
	ListResources(ctx context.Context, resourceType string) ([]*models.Resource, error)
}

type resourceService struct {
	repo      ResourceRepository
	publisher realtime.Publisher
	logger    *logrus.Logger
}

func NewResourceService(repo ResourceRepository, publisher realtime.Publisher, logger *logrus.Logger) ResourceService {
	return &resourceService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateResource registers an operational resource. Admins only.
func (s *resourceService) CreateResource(ctx context.Context, input CreateResourceInput) (*models.Resource, error) {
	caller := auth.IdentityFromContext(ctx)
	log := s.logger.WithFields(logrus.Fields{
		"service": "resource",
		"method":  "CreateResource",
		"name":    input.Name,
		"user_id": caller.UserID,
	})
	log.Info("Attempting to create a new resource")

	resource, err := newResource(input)
	if err != nil {
		log.WithError(err).Warn("Resource rejected")
		return nil, err
	}
	if err := auth.Authorize(caller, auth.ActionCreateResource); err != nil {
		log.WithError(err).Warn("Resource creation not authorized")
		return nil, err
	}

	if err := s.repo.Create(ctx, resource); err != nil {
		log.WithError(err).Error("Failed to create resource in repository")
		return nil, fmt.Errorf("service: could not create resource: %w", err)
	}

	log.WithField("resource_id", resource.ID).Info("Resource created successfully")
	s.publisher.Publish(ctx, realtime.EventNewResource, resource)
	return resource, nil
}

func newResource(input CreateResourceInput) (*models.Resource, error) {
	if strings.TrimSpace(input.Type) == "" {
		return nil, models.NewValidationError("type", "is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, models.NewValidationError("name", "is required")
	}
	lat, lon, err := coordinates(input.Latitude, input.Longitude)
	if err != nil {
		return nil, err
	}
	if err := checkLoad(input.CurrentLoad, input.Capacity); err != nil {
		return nil, err
	}
	return &models.Resource{
		ID:          uuid.New(),
		Type:        strings.TrimSpace(input.Type),
		Name:        strings.TrimSpace(input.Name),
		Latitude:    lat,
		Longitude:   lon,
		Description: input.Description,
		Contact:     input.Contact,
		Capacity:    input.Capacity,
		CurrentLoad: input.CurrentLoad,
		Status:      models.ResourceOperational,
	}, nil
}

// checkLoad enforces 0 <= load <= capacity.
func checkLoad(load, capacity int) error {
	if capacity < 0 {
		return models.NewValidationError("capacity", "cannot be negative")
	}
	if load < 0 {
		return models.NewValidationError("current_load", "cannot be negative")
	}
	if load > capacity {
		return models.NewValidationError("current_load", "cannot exceed capacity %d", capacity)
	}
	return nil
}

// UpdateResourceLoad sets the current load of a resource. The capacity
// bound is checked again under the row lock in the repository.
func (s *resourceService) UpdateResourceLoad(ctx context.Context, id uuid.UUID, load int) (*models.Resource, error) {
	caller := auth.IdentityFromContext(ctx)
	log := s.logger.WithFields(logrus.Fields{
		"service":     "resource",
		"method":      "UpdateResourceLoad",
		"resource_id": id,
		"load":        load,
	})
	if load < 0 {
		return nil, models.NewValidationError("current_load", "cannot be negative")
	}
	if err := auth.Authorize(caller, auth.ActionUpdateResourceLoad); err != nil {
		log.WithError(err).Warn("Load update not authorized")
		return nil, err
	}

	resource, err := s.repo.UpdateLoad(ctx, id, load)
	if err != nil {
		log.WithError(err).Warn("Failed to update resource load")
		return nil, fmt.Errorf("service: could not update resource %s: %w", id, err)
	}

	log.Info("Resource load updated")
	s.publisher.Publish(ctx, realtime.EventResourceUpdated, resource)
	return resource, nil
}

// ListResources returns operational resources, optionally of one type.
func (s *resourceService) ListResources(ctx context.Context, resourceType string) ([]*models.Resource, error) {
	if err := auth.Authorize(auth.IdentityFromContext(ctx), auth.ActionRead); err != nil {
		return nil, err
	}
	resources, err := s.repo.ListOperational(ctx, resourceType)
	if err != nil {
		s.logger.WithError(err).WithField("method", "ListResources").Error("Failed to list resources")
		return nil, fmt.Errorf("service: could not list resources: %w", err)
	}
	return resources, nil
}
