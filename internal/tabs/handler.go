package tabs

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"decision-backend/internal/jobs"
	"decision-backend/internal/shared/server/middleware"
	"decision-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/projects/:projectId/tabs/:jobId/close", h.close)
	rg.POST("/projects/:projectId/tabs/:jobId/reopen", h.reopen)
	rg.DELETE("/projects/:projectId/tabs/:jobId", h.purge)
	rg.GET("/projects/:projectId/tabs/closed", h.closedList)
}

func (h *Handler) close(c *gin.Context) {
	ownerID := middleware.OwnerIDFromContext(c)
	projectID := c.Param("projectId")
	jobID := c.Param("jobId")

	if err := h.Svc.Close(c.Request.Context(), ownerID, projectID, jobID); err != nil {
		switch {
		case errors.Is(err, jobs.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
		case errors.Is(err, ErrNotClosable):
			respond.Error(c, http.StatusConflict, "invalid_transition", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to close tab", nil)
		}
		return
	}
	respond.OK(c, gin.H{"status": "closed"})
}

func (h *Handler) reopen(c *gin.Context) {
	ownerID := middleware.OwnerIDFromContext(c)
	projectID := c.Param("projectId")
	jobID := c.Param("jobId")

	if err := h.Svc.Reopen(c.Request.Context(), ownerID, projectID, jobID); err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to reopen tab", nil)
		return
	}
	respond.OK(c, gin.H{"status": "open"})
}

func (h *Handler) purge(c *gin.Context) {
	ownerID := middleware.OwnerIDFromContext(c)
	projectID := c.Param("projectId")
	jobID := c.Param("jobId")

	if err := h.Svc.Purge(c.Request.Context(), ownerID, projectID, jobID); err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to purge job", nil)
		return
	}
	respond.OK(c, gin.H{"status": "purged"})
}

func (h *Handler) closedList(c *gin.Context) {
	projectID := c.Param("projectId")

	ids, err := h.Svc.ClosedIDs(c.Request.Context(), projectID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list closed tabs", nil)
		return
	}
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	respond.OK(c, gin.H{"closed": out})
}
