package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"decision-backend/internal/ai"
	openai "decision-backend/internal/ai/openai"
	googleauth "decision-backend/internal/auth"
	"decision-backend/internal/datafiles"
	"decision-backend/internal/jobs"
	"decision-backend/internal/projects"
	"decision-backend/internal/shared/config"
	"decision-backend/internal/shared/server"
	"decision-backend/internal/shared/storage/db"
	"decision-backend/internal/shared/storage/object"
	localstore "decision-backend/internal/shared/storage/object/local"
	s3store "decision-backend/internal/shared/storage/object/s3"
	"decision-backend/internal/tabs"
	"decision-backend/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	UsersRepo     users.Repo
	ProjectsRepo  projects.Repo
	DataFilesRepo datafiles.Repo
	JobsRepo      jobs.Repo
	TabsRepo      tabs.Repo

	UsersService     *users.Service
	ProjectsService  *projects.Service
	DataFilesService *datafiles.Service
	JobsService      *jobs.Service
	TabsService      *tabs.Service

	UsersHandler     *users.Handler
	ProjectsHandler  *projects.Handler
	DataFilesHandler *datafiles.Handler
	JobsHandler      *jobs.Handler
	TabsHandler      *tabs.Handler
	GoogleAuth       *googleauth.GoogleService
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		UsersHandler:     app.UsersHandler,
		ProjectsHandler:  app.ProjectsHandler,
		DataFilesHandler: app.DataFilesHandler,
		JobsHandler:      app.JobsHandler,
		TabsHandler:      app.TabsHandler,
		GoogleAuth:       app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, errors.New("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory repositories: %v", err)
			sqlDB.Close()
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.ProjectsRepo = &projects.PGRepo{DB: app.DB}
		app.DataFilesRepo = &datafiles.PGRepo{DB: app.DB}
		app.JobsRepo = &jobs.PGRepo{DB: app.DB}
		app.TabsRepo = &tabs.PGRepo{DB: app.DB}
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.ProjectsRepo = projects.NewMemoryRepo()
		app.DataFilesRepo = datafiles.NewMemoryRepo()
		app.JobsRepo = jobs.NewMemoryRepo()
		app.TabsRepo = tabs.NewMemoryRepo()
	}

	aiClient := ai.Client(ai.PlaceholderClient{})
	promptClient := ai.PromptClient(promptPlaceholder{})
	if app.Config.AIProvider == "openai" {
		client, err := openai.NewClient(os.Getenv("OPENAI_API_KEY"), app.Config.AIModel)
		if err != nil {
			return err
		}
		aiClient = client

		chatModel := app.Config.ChatModel
		if strings.TrimSpace(chatModel) == "" {
			chatModel = app.Config.AIModel
		}
		prompt, err := openai.NewPromptClient(os.Getenv("OPENAI_API_KEY"), chatModel)
		if err != nil {
			return err
		}
		promptClient = prompt
	}

	userSvc := users.NewService(app.UsersRepo)
	projectSvc := projects.NewService(app.ProjectsRepo)
	fileSvc := datafiles.NewService(app.DataFilesRepo, app.Store)

	jobSvc := &jobs.Service{
		Repo:     app.JobsRepo,
		Projects: projectSvc,
		Files:    fileSvc,
		AI:       aiClient,
		Prompt:   promptClient,
		Provider: app.Config.AIProvider,
		Model:    app.Config.AIModel,
	}
	tabSvc := tabs.NewService(app.TabsRepo, jobSvc)
	jobSvc.Closed = tabSvc

	app.UsersService = userSvc
	app.ProjectsService = projectSvc
	app.DataFilesService = fileSvc
	app.JobsService = jobSvc
	app.TabsService = tabSvc

	app.UsersHandler = users.NewHandler(userSvc)
	app.ProjectsHandler = projects.NewHandler(projectSvc)
	app.DataFilesHandler = datafiles.NewHandler(fileSvc)
	app.JobsHandler = jobs.NewHandler(jobSvc)
	app.TabsHandler = tabs.NewHandler(tabSvc)
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userSvc,
	)

	return nil
}

type promptPlaceholder struct{}

func (promptPlaceholder) Complete(ctx context.Context, prompt string) (string, error) {
	_ = ctx
	_ = prompt
	return "", errors.New("ai prompt client not configured")
}
