package api

import (
	"net/http"

	"workhub-backend/internal/auth/delivery"
	authUsecase "workhub-backend/internal/auth/usecase"
	workDelivery "workhub-backend/internal/workitem/delivery"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(r *gin.Engine, authUsecase authUsecase.AuthUsecase, workHandler *workDelivery.WorkItemHandler) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Sync routes (protected)
		sync := api.Group("/sync")
		sync.Use(delivery.AuthMiddleware(authUsecase))
		{
			sync.POST("", workHandler.SyncAll)
			sync.POST("/:provider", workHandler.SyncProvider)
		}

		// Outbound meetings (protected)
		events := api.Group("/events")
		events.Use(delivery.AuthMiddleware(authUsecase))
		{
			events.POST("/calendar", workHandler.CreateCalendarEvent)
			events.POST("/teams", workHandler.CreateTeamsMeeting)
		}

		// Read routes (protected)
		protected := api.Group("")
		protected.Use(delivery.AuthMiddleware(authUsecase))
		{
			protected.GET("/items", workHandler.GetItems)
			protected.GET("/threads/imports", workHandler.GetImportThread)
			protected.GET("/integrations", workHandler.GetIntegrations)
		}
	}
}
