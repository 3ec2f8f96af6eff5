package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"uirecorder/internal/api/handlers"
	"uirecorder/internal/api/middleware"
	"uirecorder/pkg/auth"
)

func SetupRoutes(h *handlers.Handler, j *auth.JWT, log logrus.FieldLogger) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORSMiddleware())
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	{
		// Public routes
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", h.Login)
			authGroup.POST("/register", h.Register)
		}
		v1.GET("/health", h.HealthCheck)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(j))
		{
			protected.GET("/users/profile", h.GetProfile)
			protected.GET("/devices", h.GetDevices)

			protected.GET("/language", h.GetLanguage)
			protected.PUT("/language", h.SetLanguage)

			protected.POST("/resolve", h.Resolve)

			sessions := protected.Group("/sessions")
			{
				sessions.GET("", h.ListSessions)
				sessions.POST("", h.StartRecording)
				sessions.GET("/state", h.GetRecordingState)
				sessions.GET("/:id", h.GetSession)
				sessions.DELETE("/:id", h.DeleteSession)
				sessions.POST("/:id/stop", h.StopRecording)
				sessions.GET("/:id/export", h.ExportSession)
				sessions.PUT("/:id/name", h.UpdateSession("name"))
				sessions.PUT("/:id/description", h.UpdateSession("description"))
				sessions.PUT("/:id/precondition", h.UpdateSession("precondition"))
				sessions.POST("/:id/highlight", h.Highlight)
				sessions.POST("/:id/steps", h.InsertStep)
				sessions.PUT("/:id/steps/:step", h.UpdateStep)
				sessions.DELETE("/:id/steps/:step", h.DeleteStep)
			}

			// Browsers cannot set headers on websocket upgrades; the token
			// travels in the query string.
			protected.GET("/ws/sessions/:id", h.RecordingWebSocket)
		}
	}

	return router
}
