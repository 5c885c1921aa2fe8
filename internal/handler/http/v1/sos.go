package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/disaster_response_system/internal/models"
	"github.com/shenikar/disaster_response_system/internal/service"
)

// @Summary Raise an SOS alert
// @Description Raise an alert owned by the caller
// @Tags SOS
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sos body CreateSOSRequest true "SOS request"
// @Success 201 {object} SOSResponse
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /sos [post]
func (h *Handler) createSOS(c *gin.Context) {
	var input CreateSOSRequest
	log := h.logger.WithField("method", "createSOS")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		badRequest(c, "invalid request body")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		badRequest(c, err.Error())
		return
	}

	alert, err := h.sos.CreateSOS(c.Request.Context(), service.CreateSOSInput{
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Message:   input.Message,
	})
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, alert)
}

// @Summary List SOS alerts
// @Description List alerts with the given status, newest first
// @Tags SOS
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status" Enums(active, resolved) default(active)
// @Success 200 {array} SOSResponse
// @Failure 400 {object} ErrorResponse "Invalid status"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /sos [get]
func (h *Handler) listSOS(c *gin.Context) {
	log := h.logger.WithField("method", "listSOS")
	alerts, err := h.sos.ListSOS(c.Request.Context(), models.SOSStatus(c.Query("status")))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// @Summary Update SOS status
// @Description Mark an SOS alert active or resolved
// @Tags SOS
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "SOS ID"
// @Param status body UpdateStatusRequest true "New status"
// @Success 200 {object} SOSResponse
// @Failure 400 {object} ErrorResponse "Invalid ID or status"
// @Failure 404 {object} ErrorResponse "SOS alert not found"
// @Router /sos/{id}/status [put]
func (h *Handler) updateSOSStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid SOS ID")
		return
	}
	log := h.logger.WithField("method", "updateSOSStatus").WithField("id", id)

	var input UpdateStatusRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		badRequest(c, "invalid request body")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		badRequest(c, err.Error())
		return
	}

	alert, err := h.sos.UpdateSOSStatus(c.Request.Context(), id, models.SOSStatus(input.Status))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}
