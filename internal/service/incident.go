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

// IncidentRepository - контракт хранилища инцидентов и их кэша
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	IncrementVerification(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.IncidentStatus) (*models.Incident, error)
	List(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, error)
	CountByStatus(ctx context.Context, status models.IncidentStatus) (int, error)
	GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	SetIncidentCache(ctx context.Context, incident *models.Incident) error
}

// ReportIncidentInput describes a new report. ID may be chosen by the caller,
// for example to name stored attachments; a zero ID gets a fresh one.
type ReportIncidentInput struct {
	ID          uuid.UUID
	Type        string
	Latitude    *float64
	Longitude   *float64
	Description string
	Urgency     string
	ImagePath   *string
	AudioPath   *string
}

type IncidentService interface {
	ReportIncident(ctx context.Context, input ReportIncidentInput) (*models.Incident, error)
	VerifyIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	UpdateIncidentStatus(ctx context.Context, id uuid.UUID, status models.IncidentStatus) (*models.Incident, error)
	GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	ListIncidents(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, error)
}

type incidentService struct {
	repo      IncidentRepository
	publisher realtime.Publisher
	logger    *logrus.Logger
}

func NewIncidentService(repo IncidentRepository, publisher realtime.Publisher, logger *logrus.Logger) IncidentService {
	return &incidentService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// ReportIncident сохраняет новый активный инцидент и рассылает событие
func (s *incidentService) ReportIncident(ctx context.Context, input ReportIncidentInput) (*models.Incident, error) {
	caller := auth.IdentityFromContext(ctx)
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "ReportIncident",
		"type":    input.Type,
		"user_id": caller.UserID,
	})
	log.Info("Attempting to report a new incident")

	incident, err := newIncident(input)
	if err != nil {
		log.WithError(err).Warn("Incident report rejected")
		return nil, err
	}
	if err := auth.Authorize(caller, auth.ActionReportIncident); err != nil {
		log.WithError(err).Warn("Incident report not authorized")
		return nil, err
	}
	incident.ReportedBy = caller.UserID

	if err := s.repo.Create(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to create incident in repository")
		return nil, fmt.Errorf("service: could not create incident: %w", err)
	}

	log.WithField("incident_id", incident.ID).Info("Incident created successfully")
	s.publisher.Publish(ctx, realtime.EventNewIncident, incident)
	return incident, nil
}

// Validate runs the same checks ReportIncident applies before storing.
func (input ReportIncidentInput) Validate() error {
	_, err := newIncident(input)
	return err
}

func newIncident(input ReportIncidentInput) (*models.Incident, error) {
	incidentType := strings.TrimSpace(input.Type)
	if incidentType == "" {
		return nil, models.NewValidationError("type", "is required")
	}
	lat, lon, err := coordinates(input.Latitude, input.Longitude)
	if err != nil {
		return nil, err
	}
	urgency := models.UrgencyMedium
	if input.Urgency != "" {
		urgency = models.Urgency(input.Urgency)
		if !urgency.Valid() {
			return nil, models.NewValidationError("urgency", "must be one of low, medium, high, critical")
		}
	}
	id := input.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &models.Incident{
		ID:          id,
		Type:        incidentType,
		Latitude:    lat,
		Longitude:   lon,
		Description: input.Description,
		ImagePath:   input.ImagePath,
		AudioPath:   input.AudioPath,
		Urgency:     urgency,
		Status:      models.IncidentActive,
	}, nil
}

// VerifyIncident добавляет одно подтверждение инцидента
func (s *incidentService) VerifyIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	caller := auth.IdentityFromContext(ctx)
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "VerifyIncident",
		"incident_id": id,
		"user_id":     caller.UserID,
	})
	if err := auth.Authorize(caller, auth.ActionVerifyIncident); err != nil {
		log.WithError(err).Warn("Verification not authorized")
		return nil, err
	}

	incident, err := s.repo.IncrementVerification(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to verify incident")
		return nil, fmt.Errorf("service: could not verify incident %s: %w", id, err)
	}
	s.refreshCache(ctx, log, incident)

	log.WithField("verification_count", incident.VerificationCount).Info("Incident verified")
	s.publisher.Publish(ctx, realtime.EventIncidentVerified, realtime.IncidentVerifiedPayload{
		IncidentID:        incident.ID.String(),
		VerificationCount: incident.VerificationCount,
		Version:           incident.Version,
	})
	return incident, nil
}

// UpdateIncidentStatus moves an incident to another status. Any transition
// between the known statuses is allowed.
func (s *incidentService) UpdateIncidentStatus(ctx context.Context, id uuid.UUID, status models.IncidentStatus) (*models.Incident, error) {
	caller := auth.IdentityFromContext(ctx)
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "UpdateIncidentStatus",
		"incident_id": id,
		"status":      status,
		"user_id":     caller.UserID,
	})
	log.Info("Attempting to update incident status")

	if !status.Valid() {
		return nil, models.NewValidationError("status", "must be one of active, resolved, cleared, expected")
	}
	if err := auth.Authorize(caller, auth.ActionUpdateIncidentStatus); err != nil {
		log.WithError(err).Warn("Status update not authorized")
		return nil, err
	}

	incident, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		log.WithError(err).Warn("Failed to update incident status")
		return nil, fmt.Errorf("service: could not update incident %s: %w", id, err)
	}
	s.refreshCache(ctx, log, incident)

	log.Info("Incident status updated")
	s.publisher.Publish(ctx, realtime.EventIncidentStatusUpdate, realtime.IncidentStatusPayload{
		IncidentID: incident.ID.String(),
		Status:     string(incident.Status),
		Version:    incident.Version,
	})
	return incident, nil
}

// GetIncident читает инцидент через кэш
func (s *incidentService) GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "GetIncident",
		"incident_id": id,
	})
	if err := auth.Authorize(auth.IdentityFromContext(ctx), auth.ActionRead); err != nil {
		return nil, err
	}

	cached, err := s.repo.GetIncidentFromCache(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to read incident cache, falling back to database")
	} else if cached != nil {
		log.Debug("Incident served from cache")
		return cached, nil
	}

	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to get incident in repository")
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}
	if err := s.repo.SetIncidentCache(ctx, incident); err != nil {
		log.WithError(err).Warn("Failed to cache incident")
	}
	return incident, nil
}

// ListIncidents возвращает инциденты по фильтру, сначала новые
func (s *incidentService) ListIncidents(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, error) {
	if err := auth.Authorize(auth.IdentityFromContext(ctx), auth.ActionRead); err != nil {
		return nil, err
	}
	if filter.Status == "" {
		filter.Status = models.IncidentActive
	}
	if !filter.Status.Valid() {
		return nil, models.NewValidationError("status", "must be one of active, resolved, cleared, expected")
	}
	if filter.Urgency != "" && !filter.Urgency.Valid() {
		return nil, models.NewValidationError("urgency", "must be one of low, medium, high, critical")
	}

	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "ListIncidents",
		"status":  filter.Status,
	})

	incidents, err := s.repo.List(ctx, filter)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}

	log.WithField("count", len(incidents)).Info("Incidents listed successfully")
	return incidents, nil
}

// refreshCache записывает зафиксированную строку в кэш. Выполняется и после
// отключения клиента, иначе старая запись прожила бы до истечения TTL.
func (s *incidentService) refreshCache(ctx context.Context, log *logrus.Entry, incident *models.Incident) {
	if err := s.repo.SetIncidentCache(context.WithoutCancel(ctx), incident); err != nil {
		log.WithError(err).Warn("Failed to refresh incident cache")
	}
}

// coordinates checks that both values are present and on the globe.
func coordinates(lat, lon *float64) (float64, float64, error) {
	if lat == nil {
		return 0, 0, models.NewValidationError("latitude", "is required")
	}
	if lon == nil {
		return 0, 0, models.NewValidationError("longitude", "is required")
	}
	if *lat < -90 || *lat > 90 {
		return 0, 0, models.NewValidationError("latitude", "must be between -90 and 90")
	}
	if *lon < -180 || *lon > 180 {
		return 0, 0, models.NewValidationError("longitude", "must be between -180 and 180")
	}
	return *lat, *lon, nil
}
