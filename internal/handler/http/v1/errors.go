package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/disaster_response_system/internal/models"
	"github.com/sirupsen/logrus"
)

// respondError maps a service error onto a status code. Internal failures
// are logged and never echoed to the client.
func respondError(c *gin.Context, log *logrus.Entry, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		log.WithError(err).Warn("Request rejected by validation")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: verr.Message, Code: "validation_error", Field: verr.Field})
	case errors.Is(err, models.ErrValidation):
		log.WithError(err).Warn("Request rejected by validation")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "validation_error"})
	case errors.Is(err, models.ErrUnauthenticated):
		log.WithError(err).Warn("Unauthenticated request")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "unauthenticated"})
	case errors.Is(err, models.ErrForbidden):
		log.WithError(err).Warn("Forbidden request")
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "permission denied", Code: "forbidden"})
	case errors.Is(err, models.ErrNotFound):
		log.WithError(err).Warn("Resource not found")
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Code: "not_found"})
	case errors.Is(err, models.ErrConflict):
		log.WithError(err).Warn("Conflicting request")
		c.JSON(http.StatusConflict, ErrorResponse{Error: conflictMessage(err), Code: "conflict"})
	default:
		log.WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: "internal"})
	}
}

func conflictMessage(err error) string {
	if errors.Is(err, models.ErrUsernameTaken) {
		return "username already exists"
	}
	return "conflict"
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: "bad_request"})
}
