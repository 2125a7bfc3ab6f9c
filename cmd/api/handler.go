package api

import (
	authUsecase "workhub-backend/internal/auth/usecase"
	workDelivery "workhub-backend/internal/workitem/delivery"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	authUsecase authUsecase.AuthUsecase
	workHandler *workDelivery.WorkItemHandler
	logger      *zap.Logger
}

func NewHandler(authUc authUsecase.AuthUsecase, workHandler *workDelivery.WorkItemHandler, logger *zap.Logger) *Handler {
	return &Handler{
		authUsecase: authUc,
		workHandler: workHandler,
		logger:      logger,
	}
}

// Router builds the gin engine with CORS and every route mounted
func (h *Handler) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.authUsecase, h.workHandler)
	return r
}

func (h *Handler) Start(addr string) error {
	return h.Router().Run(addr)
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		h.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
		)
	}
}
