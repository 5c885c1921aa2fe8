package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// @Summary Create a resource
// @Description Register an operational resource. Admin only.
// @Tags Resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param resource body CreateResourceRequest true "Resource creation request"
// @Success 201 {object} ResourceResponse
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /resources [post]
func (h *Handler) createResource(c *gin.Context) {
	var input CreateResourceRequest
	log := h.logger.WithField("method", "createResource")

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

	resource, err := h.resources.CreateResource(c.Request.Context(), DTOToCreateResourceInput(input))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, resource)
}

// @Summary List resources
// @Description List operational resources, optionally of one type
// @Tags Resources
// @Produce json
// @Security BearerAuth
// @Param type query string false "Resource type"
// @Success 200 {array} ResourceResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /resources [get]
func (h *Handler) listResources(c *gin.Context) {
	log := h.logger.WithField("method", "listResources")
	resources, err := h.resources.ListResources(c.Request.Context(), c.Query("type"))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, resources)
}

// @Summary Update resource load
// @Description Set the current load of a resource. Admin only.
// @Tags Resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Param load body UpdateLoadRequest true "New load"
// @Success 200 {object} ResourceResponse
// @Failure 400 {object} ErrorResponse "Invalid ID or load"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Resource not found"
// @Router /resources/{id}/load [put]
func (h *Handler) updateResourceLoad(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid resource ID")
		return
	}
	log := h.logger.WithField("method", "updateResourceLoad").WithField("id", id)

	var input UpdateLoadRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		badRequest(c, "invalid request body")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		badRequest(c, err.Error())
		return
	}

	resource, err := h.resources.UpdateResourceLoad(c.Request.Context(), id, *input.CurrentLoad)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, resource)
}
