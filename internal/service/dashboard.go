package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shenikar/disaster_response_system/internal/auth"
	"github.com/shenikar/disaster_response_system/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type DashboardService interface {
	Summarize(ctx context.Context) (*models.DashboardSummary, error)
}

// dashboardService composes read-only queries over the entity repositories.
// Nothing is cached; every call reflects the latest committed writes.
type dashboardService struct {
	incidents  IncidentRepository
	sos        SOSRepository
	resources  ResourceRepository
	broadcasts BroadcastRepository
	logger     *logrus.Logger
}

func NewDashboardService(incidents IncidentRepository, sos SOSRepository, resources ResourceRepository, broadcasts BroadcastRepository, logger *logrus.Logger) DashboardService {
	return &dashboardService{
		incidents:  incidents,
		sos:        sos,
		resources:  resources,
		broadcasts: broadcasts,
		logger:     logger,
	}
}

func (s *dashboardService) Summarize(ctx context.Context) (*models.DashboardSummary, error) {
	if err := auth.Authorize(auth.IdentityFromContext(ctx), auth.ActionRead); err != nil {
		return nil, err
	}
	log := s.logger.WithFields(logrus.Fields{
		"service": "dashboard",
		"method":  "Summarize",
	})

	var (
		activeCount int
		recent      []*models.Incident
		alerts      []*models.SOSAlert
		resources   []*models.Resource
		broadcasts  []*models.Broadcast
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		activeCount, err = s.incidents.CountByStatus(gctx, models.IncidentActive)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.incidents.List(gctx, models.IncidentFilter{
			Status: models.IncidentActive,
			Limit:  models.DashboardRecentIncidents,
		})
		return err
	})
	g.Go(func() (err error) {
		alerts, err = s.sos.List(gctx, models.SOSActive)
		return err
	})
	g.Go(func() (err error) {
		resources, err = s.resources.ListOperational(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		broadcasts, err = s.broadcasts.ListRecent(gctx, models.DashboardRecentBroadcasts)
		return err
	})
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Failed to assemble dashboard summary")
		return nil, fmt.Errorf("service: could not summarize dashboard: %w", err)
	}

	// Repositories already order newest first; the bounds are enforced here too.
	if len(recent) > models.DashboardRecentIncidents {
		recent = recent[:models.DashboardRecentIncidents]
	}
	if len(broadcasts) > models.DashboardRecentBroadcasts {
		broadcasts = broadcasts[:models.DashboardRecentBroadcasts]
	}

	summary := &models.DashboardSummary{
		ActiveIncidents:      activeCount,
		RecentIncidents:      recent,
		ActiveSOSCount:       len(alerts),
		ActiveSOSAlerts:      alerts,
		AvailableResources:   len(resources),
		ResourceAvailability: make([]models.ResourceAvailability, 0, len(resources)),
		EmergencyBroadcasts:  make([]string, 0, len(broadcasts)),
		GeneratedAt:          time.Now().UTC(),
	}
	for _, r := range resources {
		summary.ResourceAvailability = append(summary.ResourceAvailability, models.ResourceAvailability{
			Type:     r.Name,
			Quantity: r.Available(),
		})
	}
	for _, b := range broadcasts {
		summary.EmergencyBroadcasts = append(summary.EmergencyBroadcasts, b.Message)
	}

	log.WithField("active_incidents", activeCount).Debug("Dashboard summary assembled")
	return summary, nil
}
