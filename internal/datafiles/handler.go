package datafiles

import (
	"net/http"

	"github.com/gin-gonic/gin"

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
	rg.POST("/projects/:projectId/files", h.upload)
	rg.GET("/projects/:projectId/files", h.list)
}

func (h *Handler) upload(c *gin.Context) {
	ownerID := middleware.OwnerIDFromContext(c)
	projectID := c.Param("projectId")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file form field is required", nil)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "failed to read uploaded file", nil)
		return
	}
	defer f.Close()

	file, err := h.Svc.Upload(c.Request.Context(), ownerID, projectID, fileHeader.Filename, f)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	respond.JSON(c, http.StatusCreated, file)
}

func (h *Handler) list(c *gin.Context) {
	projectID := c.Param("projectId")

	files, err := h.Svc.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list files", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"files": files})
}
