package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/backpackers-backend/internal/api/handlers"
	"github.com/Marga-Ghale/backpackers-backend/internal/api/middleware"
	"github.com/Marga-Ghale/backpackers-backend/internal/service"
	"github.com/Marga-Ghale/backpackers-backend/internal/socket"
)

// HealthFunc reports the state of one dependency for /health.
type HealthFunc func() string

type RouterConfig struct {
	Services       *service.Services
	Hub            *socket.Hub
	AllowedOrigins []string

	// Optional; nil entries are left out of the health report.
	Health map[string]HealthFunc
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", healthHandler(cfg))

	h := handlers.NewHandlers(cfg.Services)

	api := r.Group("/api")
	{
		// ============================================
		// Public routes (no auth required)
		// ============================================
		api.GET("/search", middleware.OptionalAuthMiddleware(cfg.Services.Auth), h.Search.Search)

		if cfg.Hub != nil {
			wsHandler := socket.NewHandler(cfg.Hub, cfg.Services.Auth, cfg.Services.Group, cfg.AllowedOrigins)
			api.GET("/ws", wsHandler.HandleWebSocket)
		}

		// ============================================
		// Protected routes (require auth middleware)
		// ============================================
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(cfg.Services.Auth))
		{
			groups := protected.Group("/groups")
			{
				groups.GET("", h.Group.List)
				groups.POST("", h.Group.Create)
				groups.GET("/:id", h.Group.Get)

				// Join requests
				groups.GET("/:id/requests", h.Group.ListRequests)
				groups.POST("/:id/requests", h.Group.SubmitRequest)
				groups.POST("/:id/requests/:requestId/approve", h.Group.Approve)
				groups.POST("/:id/requests/:requestId/reject", h.Group.Reject)

				// Members
				groups.POST("/:id/members/:memberId/promote", h.Group.PromoteMember)

				// Comments
				groups.POST("/:id/comments", h.Group.AddComment)
				groups.POST("/:id/comments/:commentId/like", h.Group.LikeComment)
			}

			requests := protected.Group("/requests")
			{
				requests.GET("/mine", h.Group.MyRequests)
			}

			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.GET("/count", h.Notification.Count)
				notifications.PUT("/seen-all", h.Notification.MarkAllSeen)
				notifications.PUT("/:id/seen", h.Notification.MarkSeen)
			}
		}
	}

	return r
}

func healthHandler(cfg RouterConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		}
		for name, check := range cfg.Health {
			if check != nil {
				report[name] = check()
			}
		}
		if cfg.Hub != nil {
			report["websocket"] = "active"
			report["ws_clients"] = cfg.Hub.GetConnectedClientsCount()
		}
		c.JSON(http.StatusOK, report)
	}
}
