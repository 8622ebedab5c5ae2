package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	googleauth "decision-backend/internal/auth"
	"decision-backend/internal/datafiles"
	"decision-backend/internal/jobs"
	"decision-backend/internal/projects"
	"decision-backend/internal/shared/config"
	"decision-backend/internal/shared/metrics"
	"decision-backend/internal/shared/server/middleware"
	"decision-backend/internal/shared/server/respond"
	"decision-backend/internal/tabs"
	"decision-backend/internal/users"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config           config.Config
	UsersHandler     *users.Handler
	ProjectsHandler  *projects.Handler
	DataFilesHandler *datafiles.Handler
	JobsHandler      *jobs.Handler
	TabsHandler      *tabs.Handler
	GoogleAuth       *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UsersHandler != nil {
		deps.UsersHandler.RegisterRoutes(api)
	}
	if deps.ProjectsHandler != nil {
		deps.ProjectsHandler.RegisterRoutes(api)
	}
	if deps.DataFilesHandler != nil {
		deps.DataFilesHandler.RegisterRoutes(api)
	}
	if deps.JobsHandler != nil {
		deps.JobsHandler.RegisterRoutes(api)
	}
	if deps.TabsHandler != nil {
		deps.TabsHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
