package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "credentials-backend/internal/auth"
	"credentials-backend/internal/credentials"
	"credentials-backend/internal/dashboard"
	"credentials-backend/internal/profiles"
	"credentials-backend/internal/shared/config"
	"credentials-backend/internal/shared/server"
	"credentials-backend/internal/shared/storage/content"
	localstore "credentials-backend/internal/shared/storage/content/local"
	s3store "credentials-backend/internal/shared/storage/content/s3"
	"credentials-backend/internal/shared/storage/db"
)

// App holds shared dependencies.
type App struct {
	Config            config.Config
	Router            *gin.Engine
	DB                *sql.DB
	Store             content.Store
	ProfilesRepo      profiles.Repo
	CredentialsRepo   credentials.Repo
	ProfilesService   *profiles.Service
	CredentialsSvc    *credentials.Service
	Aggregator        *credentials.Aggregator
	DashboardService  *dashboard.Service
	ProfileHandler    *profiles.Handler
	CredentialHandler *credentials.Handler
	DashboardHandler  *dashboard.Handler
	GoogleAuth        *googleauth.GoogleService
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ContentStoreType) == "" {
		cfg.ContentStoreType = "local"
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

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            app.Config,
		ProfileHandler:    app.ProfileHandler,
		CredentialHandler: app.CredentialHandler,
		DashboardHandler:  app.DashboardHandler,
		GoogleAuth:        app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
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
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (content.Store, error) {
	switch cfg.ContentStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildServices(app *App) {
	var profileRepo profiles.Repo
	var credentialRepo credentials.Repo

	if app.DB != nil {
		profileRepo = &profiles.PGRepo{DB: app.DB}
		credentialRepo = &credentials.PGRepo{DB: app.DB}
	} else {
		profileRepo = profiles.NewMemoryRepo()
		credentialRepo = credentials.NewMemoryRepo()
	}

	profileSvc := profiles.NewService(profileRepo)

	aggregator := &credentials.Aggregator{
		Repo:        credentialRepo,
		Timeout:     app.Config.LookupTimeout,
		MaxInFlight: app.Config.LookupMaxInFlight,
	}

	credentialSvc := &credentials.Service{
		Repo:     credentialRepo,
		Store:    app.Store,
		Profiles: profileSvc,
	}

	dashboardSvc := dashboard.NewService(profileSvc, aggregator)

	googleAuthSvc := googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		profileSvc,
	)

	app.ProfilesRepo = profileRepo
	app.CredentialsRepo = credentialRepo
	app.ProfilesService = profileSvc
	app.CredentialsSvc = credentialSvc
	app.Aggregator = aggregator
	app.DashboardService = dashboardSvc
	app.ProfileHandler = profiles.NewHandler(profileSvc)
	app.CredentialHandler = credentials.NewHandler(credentialSvc, app.Config.GatewayURL)
	app.DashboardHandler = dashboard.NewHandler(dashboardSvc, app.Config.GatewayURL)
	app.GoogleAuth = googleAuthSvc
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
