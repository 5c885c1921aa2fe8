package v1

import (
	"context"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/shenikar/disaster_response_system/internal/models"
	"github.com/sirupsen/logrus"
)

// @Summary Report an incident
// @Description Report a new incident. Accepts JSON, or multipart/form-data with optional image and audio files.
// @Tags Incidents
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param incident body ReportIncidentRequest true "Incident report"
// @Success 201 {object} IncidentResponse
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents [post]
func (h *Handler) reportIncident(c *gin.Context) {
	var input ReportIncidentRequest
	log := h.logger.WithField("method", "reportIncident")

	multipartForm := c.ContentType() == binding.MIMEMultipartPOSTForm
	var err error
	if multipartForm {
		err = c.ShouldBindWith(&input, binding.FormMultipart)
	} else {
		err = c.ShouldBindJSON(&input)
	}
	if err != nil {
		log.WithError(err).Warn("Failed to bind request")
		badRequest(c, "invalid request body")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		badRequest(c, err.Error())
		return
	}

	report := DTOToReportIncidentInput(input)
	var saved []string
	if multipartForm {
		// Reject the report before anything reaches the upload dir.
		if err := report.Validate(); err != nil {
			respondError(c, log, err)
			return
		}
		report.ID = uuid.New()
		prefix := report.ID.String()
		if report.ImagePath, err = h.saveUpload(c, log, "image", prefix); err != nil {
			respondError(c, log, err)
			return
		}
		if report.ImagePath != nil {
			saved = append(saved, *report.ImagePath)
		}
		if report.AudioPath, err = h.saveUpload(c, log, "audio", prefix); err != nil {
			h.discardUploads(c, log, saved)
			respondError(c, log, err)
			return
		}
		if report.AudioPath != nil {
			saved = append(saved, *report.AudioPath)
		}
	}

	incident, err := h.incidents.ReportIncident(c.Request.Context(), report)
	if err != nil {
		h.discardUploads(c, log, saved)
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, incident)
}

// discardUploads removes attachments stored for a report that was not created.
func (h *Handler) discardUploads(c *gin.Context, log *logrus.Entry, paths []string) {
	ctx := context.WithoutCancel(c.Request.Context())
	for _, path := range paths {
		if err := h.media.Delete(ctx, path); err != nil {
			log.WithError(err).WithField("path", path).Error("Failed to remove orphaned upload")
		}
	}
}

// saveUpload stores the named multipart file, if present, and returns its path.
func (h *Handler) saveUpload(c *gin.Context, log *logrus.Entry, field, prefix string) (*string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, models.NewValidationError(field, "unreadable upload")
	}
	if fh.Filename == "" {
		return nil, nil
	}
	path, err := h.storeFile(c, fh, prefix)
	if err != nil {
		return nil, err
	}
	log.WithField(field, path).Debug("Attachment stored")
	return &path, nil
}

func (h *Handler) storeFile(c *gin.Context, fh *multipart.FileHeader, prefix string) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", models.NewValidationError("file", "unreadable upload")
	}
	defer f.Close()
	return h.media.Save(c.Request.Context(), prefix, fh.Filename, f)
}

// @Summary List incidents
// @Description List incidents, newest first. Status defaults to active.
// @Tags Incidents
// @Produce json
// @Security BearerAuth
// @Param type query string false "Incident type"
// @Param urgency query string false "Urgency" Enums(low, medium, high, critical)
// @Param status query string false "Status" Enums(active, resolved, cleared, expected)
// @Param time_from query string false "Only incidents reported at or after this RFC3339 time"
// @Success 200 {array} IncidentResponse
// @Failure 400 {object} ErrorResponse "Invalid filter"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")
	filter := models.IncidentFilter{
		Type:    c.Query("type"),
		Urgency: models.Urgency(c.Query("urgency")),
		Status:  models.IncidentStatus(c.Query("status")),
	}
	if raw := c.Query("time_from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			badRequest(c, "time_from must be an RFC3339 timestamp")
			return
		}
		filter.ReportedFrom = &from
	}

	incidents, err := h.incidents.ListIncidents(c.Request.Context(), filter)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, incidents)
}

// @Summary Get incident by ID
// @Description Get a single incident by its ID
// @Tags Incidents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} ErrorResponse "Invalid incident ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Router /incidents/{id} [get]
func (h *Handler) getIncident(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid incident ID")
		return
	}
	log := h.logger.WithField("method", "getIncident").WithField("id", id)

	incident, err := h.incidents.GetIncident(c.Request.Context(), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, incident)
}

// @Summary Verify an incident
// @Description Add one confirmation to an incident
// @Tags Incidents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} ErrorResponse "Invalid incident ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Router /incidents/{id}/verify [post]
func (h *Handler) verifyIncident(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid incident ID")
		return
	}
	log := h.logger.WithField("method", "verifyIncident").WithField("id", id)

	incident, err := h.incidents.VerifyIncident(c.Request.Context(), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, incident)
}

// @Summary Update incident status
// @Description Change the status of an incident. Admin or emergency role only.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Incident ID"
// @Param status body UpdateStatusRequest true "New status"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} ErrorResponse "Invalid incident ID or status"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Router /incidents/{id}/status [put]
func (h *Handler) updateIncidentStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid incident ID")
		return
	}
	log := h.logger.WithField("method", "updateIncidentStatus").WithField("id", id)

	var input UpdateStatusRequest
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

	incident, err := h.incidents.UpdateIncidentStatus(c.Request.Context(), id, models.IncidentStatus(input.Status))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, incident)
}
