package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/disaster_response_system/internal/auth"
	"github.com/shenikar/disaster_response_system/internal/service"
	"github.com/sirupsen/logrus"
)

const sessionCookie = "session"

// tokenFromRequest looks for a session token in the Authorization header,
// then the session cookie, then (only when allowQuery is set) the token
// query parameter.
func tokenFromRequest(c *gin.Context, allowQuery bool) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(sessionCookie); err == nil && cookie != "" {
		return cookie
	}
	if allowQuery {
		return c.Query("token")
	}
	return ""
}

// SessionAuthMiddleware resolves the session token to an identity and stores
// it in the request context. Requests without a valid session get 401.
func SessionAuthMiddleware(users service.UserService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c, false)
		if token == "" {
			log.WithField("path", c.FullPath()).Warn("Session token missing from request")
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "unauthenticated"})
			return
		}

		id, err := users.Authenticate(c.Request.Context(), token)
		if err != nil {
			log.WithError(err).WithField("path", c.FullPath()).Warn("Invalid session token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "unauthenticated"})
			return
		}

		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

func (h *Handler) setSessionCookie(c *gin.Context, res *service.AuthResult) {
	maxAge := int(h.cfg.SessionTTL.Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, res.Token, maxAge, "/", "", false, true)
}

// @Summary Register a new account
// @Description Create a user with the default role and open a session
// @Tags Auth
// @Accept json
// @Produce json
// @Param account body RegisterRequest true "Registration request"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 409 {object} ErrorResponse "Username already exists"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (h *Handler) register(c *gin.Context) {
	var input RegisterRequest
	log := h.logger.WithField("method", "register")

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

	res, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Username: input.Username,
		Password: input.Password,
		Phone:    input.Phone,
	})
	if err != nil {
		respondError(c, log, err)
		return
	}
	h.setSessionCookie(c, res)
	c.JSON(http.StatusCreated, AuthResultToResponse(res))
}

// @Summary Log in
// @Description Check credentials and open a session
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login request"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} ErrorResponse "Invalid request body"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	var input LoginRequest
	log := h.logger.WithField("method", "login")

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

	res, err := h.users.Login(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		respondError(c, log, err)
		return
	}
	h.setSessionCookie(c, res)
	c.JSON(http.StatusOK, AuthResultToResponse(res))
}

// @Summary Log out
// @Description End the current session
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /auth/logout [post]
func (h *Handler) logout(c *gin.Context) {
	log := h.logger.WithField("method", "logout")
	if err := h.users.Logout(c.Request.Context()); err != nil {
		respondError(c, log, err)
		return
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}
