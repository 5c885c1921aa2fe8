package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func parseShelterID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid shelter ID")
		return 0, false
	}
	return id, true
}

// @Summary List shelters
// @Description List shelters with their supplies. Public.
// @Tags Shelters
// @Produce json
// @Param status query string false "Status filter" Enums(all, operational, limited, full, closed) default(all)
// @Success 200 {array} ShelterResponse
// @Failure 400 {object} ErrorResponse "Invalid status"
// @Router /shelters [get]
func (h *Handler) listShelters(c *gin.Context) {
	log := h.logger.WithField("method", "listShelters")
	shelters, err := h.shelters.ListShelters(c.Request.Context(), c.DefaultQuery("status", "all"))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, shelters)
}

// @Summary Get shelter by ID
// @Description Get one shelter with its supplies. Public.
// @Tags Shelters
// @Produce json
// @Param id path int true "Shelter ID"
// @Success 200 {object} ShelterResponse
// @Failure 400 {object} ErrorResponse "Invalid shelter ID"
// @Failure 404 {object} ErrorResponse "Shelter not found"
// @Router /shelters/{id} [get]
func (h *Handler) getShelter(c *gin.Context) {
	id, ok := parseShelterID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "getShelter").WithField("id", id)

	shelter, err := h.shelters.GetShelter(c.Request.Context(), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, shelter)
}

// @Summary Create a shelter
// @Description Register a shelter with an optional supply list
// @Tags Shelters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param shelter body CreateShelterRequest true "Shelter creation request"
// @Success 201 {object} ShelterResponse
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /shelters [post]
func (h *Handler) createShelter(c *gin.Context) {
	var input CreateShelterRequest
	log := h.logger.WithField("method", "createShelter")

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

	shelter, err := h.shelters.CreateShelter(c.Request.Context(), DTOToCreateShelterInput(input))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, shelter)
}

// @Summary Update a shelter
// @Description Partial update. A supplied resources list replaces the existing one.
// @Tags Shelters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Shelter ID"
// @Param shelter body UpdateShelterRequest true "Fields to change"
// @Success 200 {object} ShelterResponse
// @Failure 400 {object} ErrorResponse "Invalid ID, body or validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Shelter not found"
// @Router /shelters/{id} [put]
func (h *Handler) updateShelter(c *gin.Context) {
	id, ok := parseShelterID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "updateShelter").WithField("id", id)

	var input UpdateShelterRequest
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

	shelter, err := h.shelters.UpdateShelter(c.Request.Context(), id, DTOToShelterPatch(input))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, shelter)
}

// @Summary Update shelter occupancy
// @Description Set the number of people in a shelter, between 0 and its capacity
// @Tags Shelters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Shelter ID"
// @Param occupancy body UpdateOccupancyRequest true "New occupancy"
// @Success 200 {object} ShelterResponse
// @Failure 400 {object} ErrorResponse "Invalid ID or occupancy"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Shelter not found"
// @Router /shelters/{id}/occupancy [put]
func (h *Handler) updateOccupancy(c *gin.Context) {
	id, ok := parseShelterID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "updateOccupancy").WithField("id", id)

	var input UpdateOccupancyRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		badRequest(c, "occupancy must be an integer")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		badRequest(c, err.Error())
		return
	}

	shelter, err := h.shelters.UpdateOccupancy(c.Request.Context(), id, *input.Occupancy)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, shelter)
}
