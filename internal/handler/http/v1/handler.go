package v1

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shenikar/disaster_response_system/internal/config"
	"github.com/shenikar/disaster_response_system/internal/realtime"
	"github.com/shenikar/disaster_response_system/internal/service"
	"github.com/sirupsen/logrus"
)

// MediaStore persists uploaded incident attachments.
type MediaStore interface {
	Save(ctx context.Context, prefix, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, path string) error
}

// Services groups the application services the handlers delegate to.
type Services struct {
	Users      service.UserService
	Incidents  service.IncidentService
	Resources  service.ResourceService
	SOS        service.SOSService
	Broadcasts service.BroadcastService
	Shelters   service.ShelterService
	Dashboard  service.DashboardService
}

type Handler struct {
	users      service.UserService
	incidents  service.IncidentService
	resources  service.ResourceService
	sos        service.SOSService
	broadcasts service.BroadcastService
	shelters   service.ShelterService
	dashboard  service.DashboardService
	hub        *realtime.Hub
	media      MediaStore
	logger     *logrus.Logger
	validate   *validator.Validate
	cfg        *config.Config
}

func NewHandler(services Services, hub *realtime.Hub, media MediaStore, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		users:      services.Users,
		incidents:  services.Incidents,
		resources:  services.Resources,
		sos:        services.SOS,
		broadcasts: services.Broadcasts,
		shelters:   services.Shelters,
		dashboard:  services.Dashboard,
		hub:        hub,
		media:      media,
		logger:     logger,
		validate:   validator.New(),
		cfg:        cfg,
	}
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Produce json
// @Success 200 {object} map[string]any "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "connections": h.hub.Count()})
}

// @Summary List connected users
// @Description Users that currently hold at least one push connection
// @Tags Realtime
// @Produce json
// @Security BearerAuth
// @Success 200 {object} PresenceResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /presence [get]
func (h *Handler) presence(c *gin.Context) {
	c.JSON(http.StatusOK, PresenceResponse{
		Online:      h.hub.Online(),
		Connections: h.hub.Count(),
	})
}

// @Summary Dashboard summary
// @Description Cross-entity summary assembled from the latest committed state
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DashboardResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /dashboard/summary [get]
func (h *Handler) dashboardSummary(c *gin.Context) {
	log := h.logger.WithField("method", "dashboardSummary")
	summary, err := h.dashboard.Summarize(c.Request.Context())
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
