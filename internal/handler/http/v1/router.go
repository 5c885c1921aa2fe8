package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RegisterRoutes registers all API v1 routes
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Public
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
	}
	api.GET("/shelters", h.listShelters)
	api.GET("/shelters/:id", h.getShelter)
	api.GET("/system/health", h.healthCheck)

	// The push handshake authenticates on its own, the token may arrive as a query parameter
	api.GET("/ws", h.streamEvents)

	protected := api.Group("")
	protected.Use(SessionAuthMiddleware(h.users, h.logger))
	{
		protected.POST("/auth/logout", h.logout)

		incidents := protected.Group("/incidents")
		{
			incidents.POST("", h.reportIncident)
			incidents.GET("", h.listIncidents)
			incidents.GET("/:id", h.getIncident)
			incidents.POST("/:id/verify", h.verifyIncident)
			incidents.PUT("/:id/status", h.updateIncidentStatus)
		}

		resources := protected.Group("/resources")
		{
			resources.POST("", h.createResource)
			resources.GET("", h.listResources)
			resources.PUT("/:id/load", h.updateResourceLoad)
		}

		sos := protected.Group("/sos")
		{
			sos.POST("", h.createSOS)
			sos.GET("", h.listSOS)
			sos.PUT("/:id/status", h.updateSOSStatus)
		}

		protected.POST("/broadcast", h.createBroadcast)
		protected.GET("/broadcasts", h.listBroadcasts)

		protected.POST("/shelters", h.createShelter)
		protected.PUT("/shelters/:id", h.updateShelter)
		protected.PUT("/shelters/:id/occupancy", h.updateOccupancy)

		protected.GET("/users/:id", h.getUser)
		protected.PUT("/users/:id/role", h.grantRole)

		protected.GET("/dashboard/summary", h.dashboardSummary)
		protected.GET("/presence", h.presence)
	}
}

// AccessLogMiddleware writes one structured line per request.
func AccessLogMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"status":   c.Writer.Status(),
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"latency":  time.Since(start).String(),
			"clientIP": c.ClientIP(),
		})
		switch {
		case c.Writer.Status() >= 500:
			entry.Error("Request completed")
		case c.Writer.Status() >= 400:
			entry.Warn("Request completed")
		default:
			entry.Info("Request completed")
		}
	}
}
