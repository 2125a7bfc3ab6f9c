package delivery

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	authdomain "workhub-backend/internal/auth/domain"
	"workhub-backend/internal/workitem/domain"
	workdto "workhub-backend/internal/workitem/dto"
	"workhub-backend/internal/workitem/usecase"
	"workhub-backend/pkg/lock"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WorkItemHandler struct {
	syncUsecase  usecase.SyncUsecase
	eventUsecase usecase.EventUsecase
	locker       lock.Locker
	lockTTL      time.Duration
	syncTimeout  time.Duration
	logger       *zap.Logger
}

func NewWorkItemHandler(syncUc usecase.SyncUsecase, eventUc usecase.EventUsecase, locker lock.Locker, lockTTL, syncTimeout time.Duration, logger *zap.Logger) *WorkItemHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkItemHandler{
		syncUsecase:  syncUc,
		eventUsecase: eventUc,
		locker:       locker,
		lockTTL:      lockTTL,
		syncTimeout:  syncTimeout,
		logger:       logger.Named("http"),
	}
}

// SyncProvider handles POST /sync/:provider
func (h *WorkItemHandler) SyncProvider(c *gin.Context) {
	userID := c.GetString("userID")
	provider, ok := authdomain.ParseProvider(c.Param("provider"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown provider"})
		return
	}

	var req workdto.SyncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	release, err := h.locker.Acquire(c.Request.Context(), lock.SyncKey(userID, string(provider)), h.lockTTL)
	if err != nil {
		h.lockError(c, err)
		return
	}
	defer release()

	ctx, cancel := h.syncContext(c)
	defer cancel()

	created := h.syncUsecase.SyncProvider(ctx, userID, provider, req.AccessToken)
	c.JSON(http.StatusOK, workdto.SyncResponse{Provider: provider, Created: created})
}

// SyncAll handles POST /sync. Providers whose lock is held are skipped and
// each provider gets its own timeout.
func (h *WorkItemHandler) SyncAll(c *gin.Context) {
	userID := c.GetString("userID")

	var req workdto.SyncAllRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result := h.syncUsecase.SyncAll(c.Request.Context(), userID, usecase.SyncAllOptions{
		OverrideTokens: req.AccessTokens,
		Acquire: func(ctx context.Context, p authdomain.Provider) (func(), error) {
			return h.locker.Acquire(ctx, lock.SyncKey(userID, string(p)), h.lockTTL)
		},
		Timeout: h.syncTimeout,
	})
	c.JSON(http.StatusOK, workdto.SyncAllResponse{
		Created: result.Created,
		Skipped: result.Skipped,
		Total:   result.Total,
	})
}

func (h *WorkItemHandler) CreateCalendarEvent(c *gin.Context) {
	h.createEvent(c, h.eventUsecase.CreateCalendarEvent)
}

func (h *WorkItemHandler) CreateTeamsMeeting(c *gin.Context) {
	h.createEvent(c, h.eventUsecase.CreateTeamsMeeting)
}

type createFunc func(ctx context.Context, userID string, req domain.EventRequest) (*domain.EventLinks, error)

func (h *WorkItemHandler) createEvent(c *gin.Context, create createFunc) {
	var req domain.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.EndTime.After(req.StartTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_time must be after start_time"})
		return
	}

	links, err := create(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		var apiErr *domain.RemoteAPIError
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrIntegrationNotConnected):
			c.JSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})
		case errors.As(err, &apiErr):
			c.JSON(http.StatusBadGateway, workdto.RemoteErrorResponse{
				Error:        "remote calendar rejected the event",
				Provider:     apiErr.Provider,
				RemoteStatus: apiErr.StatusCode,
				RemoteBody:   apiErr.Body,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, links)
}

func (h *WorkItemHandler) GetItems(c *gin.Context) {
	limit := 20
	offset := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	items, total, err := h.syncUsecase.ListItems(c.Request.Context(), c.GetString("userID"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, workdto.ItemsResponse{
		Items:  items,
		Limit:  limit,
		Offset: offset,
		Total:  total,
	})
}

func (h *WorkItemHandler) GetImportThread(c *gin.Context) {
	thread, err := h.syncUsecase.GetImportThread(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if thread == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "import thread not found"})
		return
	}

	c.JSON(http.StatusOK, thread)
}

func (h *WorkItemHandler) GetIntegrations(c *gin.Context) {
	status, err := h.syncUsecase.IntegrationStatus(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"integrations": status})
}

func (h *WorkItemHandler) syncContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.syncTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.syncTimeout)
}

func (h *WorkItemHandler) lockError(c *gin.Context, err error) {
	if errors.Is(err, lock.ErrLocked) {
		c.JSON(http.StatusConflict, gin.H{"error": "sync already in progress"})
		return
	}
	h.logger.Error("sync lock unavailable", zap.Error(err))
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sync lock unavailable"})
}
