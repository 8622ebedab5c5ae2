package jobs

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"decision-backend/internal/shared/server/middleware"
	"decision-backend/internal/shared/server/respond"
)

// Handler exposes job endpoints.
type Handler struct {
	Svc     *Service
	limiter *pollLimiter
}

func NewHandler(svc *Service) *Handler {
	return &Handler{
		Svc:     svc,
		limiter: newPollLimiter(pollLimitWindow, nil),
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/jobs", h.launch)
	rg.GET("/jobs/:jobId", h.get)
	rg.POST("/jobs/:jobId/continue", h.resume)
	rg.PATCH("/jobs/:jobId/status", h.patchStatus)
	rg.POST("/jobs/:jobId/chat", h.chat)
	rg.GET("/projects/:projectId/jobs", h.list)
}

type launchRequest struct {
	ProjectID string   `json:"projectId"`
	Question  string   `json:"question"`
	FileIDs   []string `json:"fileIds"`
}

func (h *Handler) launch(c *gin.Context) {
	ownerID := middleware.OwnerIDFromContext(c)

	var req launchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	job, err := h.Svc.Launch(ctx, ownerID, req.ProjectID, req.Question, req.FileIDs)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "project not found", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	respond.JSON(c, http.StatusAccepted, job)
}

func (h *Handler) get(c *gin.Context) {
	ownerID := middleware.OwnerIDFromContext(c)
	jobID := c.Param("jobId")

	if !h.limiter.Allow(ownerID, jobID) {
		c.Header("Retry-After", strconv.Itoa(h.limiter.RetryAfterSeconds()))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "poll interval too short", nil)
		return
	}

	job, err := h.Svc.Get(c.Request.Context(), ownerID, jobID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load job", nil)
		return
	}
	respond.JSON(c, http.StatusOK, job)
}

type resumeRequest struct {
	Data map[string]any `json:"data"`
}

func (h *Handler) resume(c *gin.Context) {
	ownerID := middleware.OwnerIDFromContext(c)
	jobID := c.Param("jobId")

	var req resumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	job, err := h.Svc.Resume(ctx, ownerID, jobID, req.Data)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
		case errors.Is(err, ErrMissingRequiredField):
			respond.Error(c, http.StatusUnprocessableEntity, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrInvalidTransition):
			respond.Error(c, http.StatusConflict, "invalid_transition", err.Error(), nil)
		case errors.Is(err, ErrStaleOperation):
			// The job moved on since the client last polled. Nothing was
			// changed, so acknowledge and let polling catch up.
			respond.JSON(c, http.StatusAccepted, gin.H{"status": "already_progressed"})
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to resume job", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, job)
}

func (h *Handler) patchStatus(c *gin.Context) {
	ownerID := middleware.OwnerIDFromContext(c)
	jobID := c.Param("jobId")

	var patch StatusPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	job, err := h.Svc.ApplyStatusPatch(c.Request.Context(), ownerID, jobID, patch)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
		case errors.Is(err, ErrInvalidTransition):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, job)
}

type chatRequest struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"history"`
}

func (h *Handler) chat(c *gin.Context) {
	ownerID := middleware.OwnerIDFromContext(c)
	jobID := c.Param("jobId")

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	result, err := h.Svc.Chat(ctx, ownerID, jobID, req.Message, req.History)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
		case errors.Is(err, ErrInvalidTransition):
			respond.Error(c, http.StatusConflict, "invalid_transition", err.Error(), nil)
		case errors.Is(err, ErrStaleOperation):
			respond.JSON(c, http.StatusAccepted, gin.H{"status": "already_progressed"})
		default:
			respond.Error(c, http.StatusBadGateway, "ai_error", "chat failed", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, result)
}

func (h *Handler) list(c *gin.Context) {
	ownerID := middleware.OwnerIDFromContext(c)
	projectID := c.Param("projectId")
	includeClosed := c.Query("includeClosed") == "1"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := h.Svc.List(c.Request.Context(), ownerID, projectID, includeClosed, limit, offset)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "project not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list jobs", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"jobs": items})
}
