package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary Send an emergency broadcast
// @Description Store and push an emergency message. Radius defaults to 5.
// @Tags Broadcasts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param broadcast body CreateBroadcastRequest true "Broadcast request"
// @Success 201 {object} BroadcastResponse
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /broadcast [post]
func (h *Handler) createBroadcast(c *gin.Context) {
	var input CreateBroadcastRequest
	log := h.logger.WithField("method", "createBroadcast")

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

	broadcast, err := h.broadcasts.CreateBroadcast(c.Request.Context(), DTOToCreateBroadcastInput(input))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, broadcast)
}

// @Summary List recent broadcasts
// @Description The ten most recent broadcasts, newest first
// @Tags Broadcasts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} BroadcastResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /broadcasts [get]
func (h *Handler) listBroadcasts(c *gin.Context) {
	log := h.logger.WithField("method", "listBroadcasts")
	broadcasts, err := h.broadcasts.ListBroadcasts(c.Request.Context())
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, broadcasts)
}
