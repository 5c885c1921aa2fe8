package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/disaster_response_system/internal/auth"
	"github.com/shenikar/disaster_response_system/internal/models"
	"github.com/shenikar/disaster_response_system/internal/realtime"
	"github.com/sirupsen/logrus"
)

const recentBroadcastLimit = 10

type BroadcastRepository interface {
	Create(ctx context.Context, broadcast *models.Broadcast) error
	ListRecent(ctx context.Context, limit int) ([]*models.Broadcast, error)
}

type CreateBroadcastInput struct {
	Message   string
	Latitude  *float64
	Longitude *float64
	Radius    *float64
	ExpiresAt *time.Time
}

type BroadcastService interface {
	CreateBroadcast(ctx context.Context, input CreateBroadcastInput) (*models.Broadcast, error)
	ListBroadcasts(ctx context.Context) ([]*models.Broadcast, error)
}

type broadcastService struct {
	repo      BroadcastRepository
	publisher realtime.Publisher
	logger    *logrus.Logger
}

func NewBroadcastService(repo BroadcastRepository, publisher realtime.Publisher, logger *logrus.Logger) BroadcastService {
	return &broadcastService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateBroadcast stores and announces an emergency message. Any
// authenticated user may broadcast.
func (s *broadcastService) CreateBroadcast(ctx context.Context, input CreateBroadcastInput) (*models.Broadcast, error) {
	caller := auth.IdentityFromContext(ctx)
	log := s.logger.WithFields(logrus.Fields{
		"service": "broadcast",
		"method":  "CreateBroadcast",
		"user_id": caller.UserID,
	})
	log.Info("Attempting to create broadcast")

	broadcast, err := newBroadcast(input)
	if err != nil {
		log.WithError(err).Warn("Broadcast rejected")
		return nil, err
	}
	if err := auth.Authorize(caller, auth.ActionBroadcast); err != nil {
		log.WithError(err).Warn("Broadcast not authorized")
		return nil, err
	}
	broadcast.SenderID = caller.UserID

	if err := s.repo.Create(ctx, broadcast); err != nil {
		log.WithError(err).Error("Failed to create broadcast in repository")
		return nil, fmt.Errorf("service: could not create broadcast: %w", err)
	}

	log.WithField("broadcast_id", broadcast.ID).Info("Broadcast created")
	s.publisher.Publish(ctx, realtime.EventEmergencyBroadcast, broadcast)
	return broadcast, nil
}

func newBroadcast(input CreateBroadcastInput) (*models.Broadcast, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, models.NewValidationError("message", "is required")
	}
	if (input.Latitude == nil) != (input.Longitude == nil) {
		return nil, models.NewValidationError("latitude", "latitude and longitude must be given together")
	}
	if input.Latitude != nil {
		if _, _, err := coordinates(input.Latitude, input.Longitude); err != nil {
			return nil, err
		}
	}
	radius := models.DefaultBroadcastRadius
	if input.Radius != nil {
		radius = *input.Radius
	}
	if radius <= 0 {
		return nil, models.NewValidationError("radius", "must be greater than zero")
	}
	return &models.Broadcast{
		ID:        uuid.New(),
		Message:   message,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Radius:    radius,
		ExpiresAt: input.ExpiresAt,
	}, nil
}

// ListBroadcasts returns the most recent broadcasts, newest first.
func (s *broadcastService) ListBroadcasts(ctx context.Context) ([]*models.Broadcast, error) {
	if err := auth.Authorize(auth.IdentityFromContext(ctx), auth.ActionRead); err != nil {
		return nil, err
	}
	broadcasts, err := s.repo.ListRecent(ctx, recentBroadcastLimit)
	if err != nil {
		s.logger.WithError(err).WithField("method", "ListBroadcasts").Error("Failed to list broadcasts")
		return nil, fmt.Errorf("service: could not list broadcasts: %w", err)
	}
	return broadcasts, nil
}
