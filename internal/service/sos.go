package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shenikar/disaster_response_system/internal/auth"
	"github.com/shenikar/disaster_response_system/internal/models"
	"github.com/shenikar/disaster_response_system/internal/realtime"
	"github.com/sirupsen/logrus"
)

type SOSRepository interface {
	Create(ctx context.Context, alert *models.SOSAlert) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.SOSStatus) (*models.SOSAlert, error)
	List(ctx context.Context, status models.SOSStatus) ([]*models.SOSAlert, error)
}

type CreateSOSInput struct {
	Latitude  *float64
	Longitude *float64
	Message   string
}

type SOSService interface {
	CreateSOS(ctx context.Context, input CreateSOSInput) (*models.SOSAlert, error)
	UpdateSOSStatus(ctx context.Context, id uuid.UUID, status models.SOSStatus) (*models.SOSAlert, error)
	ListSOS(ctx context.Context, status models.SOSStatus) ([]*models.SOSAlert, error)
}

type sosService struct {
	repo      SOSRepository
	publisher realtime.Publisher
	logger    *logrus.Logger
}

func NewSOSService(repo SOSRepository, publisher realtime.Publisher, logger *logrus.Logger) SOSService {
	return &sosService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateSOS raises an alert owned by the caller. The timestamp is taken
// by the store, never from the client.
func (s *sosService) CreateSOS(ctx context.Context, input CreateSOSInput) (*models.SOSAlert, error) {
	caller := auth.IdentityFromContext(ctx)
	log := s.logger.WithFields(logrus.Fields{
		"service": "sos",
		"method":  "CreateSOS",
		"user_id": caller.UserID,
	})
	log.Info("Attempting to raise SOS alert")

	lat, lon, err := coordinates(input.Latitude, input.Longitude)
	if err != nil {
		log.WithError(err).Warn("SOS rejected")
		return nil, err
	}
	if err := auth.Authorize(caller, auth.ActionCreateSOS); err != nil {
		log.WithError(err).Warn("SOS not authorized")
		return nil, err
	}

	alert := &models.SOSAlert{
		ID:        uuid.New(),
		UserID:    caller.UserID,
		Latitude:  lat,
		Longitude: lon,
		Message:   input.Message,
		Status:    models.SOSActive,
	}
	if err := s.repo.Create(ctx, alert); err != nil {
		log.WithError(err).Error("Failed to create SOS alert in repository")
		return nil, fmt.Errorf("service: could not create sos alert: %w", err)
	}

	log.WithField("sos_id", alert.ID).Info("SOS alert raised")
	s.publisher.Publish(ctx, realtime.EventSOSAlert, alert)
	return alert, nil
}

func (s *sosService) UpdateSOSStatus(ctx context.Context, id uuid.UUID, status models.SOSStatus) (*models.SOSAlert, error) {
	caller := auth.IdentityFromContext(ctx)
	log := s.logger.WithFields(logrus.Fields{
		"service": "sos",
		"method":  "UpdateSOSStatus",
		"sos_id":  id,
		"status":  status,
		"user_id": caller.UserID,
	})
	if !status.Valid() {
		return nil, models.NewValidationError("status", "must be one of active, resolved")
	}
	if err := auth.Authorize(caller, auth.ActionUpdateSOSStatus); err != nil {
		log.WithError(err).Warn("SOS status update not authorized")
		return nil, err
	}

	alert, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		log.WithError(err).Warn("Failed to update SOS status")
		return nil, fmt.Errorf("service: could not update sos alert %s: %w", id, err)
	}

	log.Info("SOS status updated")
	s.publisher.Publish(ctx, realtime.EventSOSStatusUpdate, realtime.SOSStatusPayload{
		SOSID:  alert.ID.String(),
		Status: string(alert.Status),
	})
	return alert, nil
}

// ListSOS returns alerts with the given status (active when empty), newest first.
func (s *sosService) ListSOS(ctx context.Context, status models.SOSStatus) ([]*models.SOSAlert, error) {
	if err := auth.Authorize(auth.IdentityFromContext(ctx), auth.ActionRead); err != nil {
		return nil, err
	}
	if status == "" {
		status = models.SOSActive
	}
	if !status.Valid() {
		return nil, models.NewValidationError("status", "must be one of active, resolved")
	}
	alerts, err := s.repo.List(ctx, status)
	if err != nil {
		s.logger.WithError(err).WithField("method", "ListSOS").Error("Failed to list SOS alerts")
		return nil, fmt.Errorf("service: could not list sos alerts: %w", err)
	}
	return alerts, nil
}
