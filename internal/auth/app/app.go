package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpapi "github.com/lumamart/auth/internal/auth/http"
	"github.com/lumamart/auth/internal/auth/limiter"
	"github.com/lumamart/auth/internal/auth/policy"
	"github.com/lumamart/auth/internal/auth/service"
	"github.com/lumamart/auth/internal/auth/store"
	"github.com/lumamart/auth/internal/auth/store/drivers/sqlite"
	"github.com/lumamart/auth/pkg/cryptox"
	"github.com/lumamart/auth/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db      store.Store
	catalog *policy.ScopeCatalog
	devices *policy.DeviceRegistry
	limiter limiter.AttemptLimiter

	authService         *service.AuthenticationService
	validationService   *service.ValidationService
	refreshService      *service.RefreshService
	revocationService   *service.RevocationService
	sessionService      *service.SessionService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(app.cfg.PepperFile)

	catalog, devices, err := policy.NewDefaults()
	if err != nil {
		return nil, fmt.Errorf("invalid scope or device tables: %w", err)
	}
	app.catalog = catalog
	app.devices = devices

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initLimiter()
	app.initServices()

	if err := app.seedAdmin(); err != nil {
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase opens the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initLimiter selects the attempt limiter backend. Memory is the default;
// redis is for replicated deployments where counts must be shared.
func (app *Application) initLimiter() {
	cfg := limiter.Config{
		MaxAttempts: app.cfg.LimiterAttempts,
		Window:      app.cfg.LimiterWindow,
	}

	if app.cfg.LimiterBackend == "redis" && app.cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     app.cfg.RedisAddr,
			Password: app.cfg.RedisPassword,
		})
		app.limiter = limiter.NewRedis(client, cfg)
		app.logger.Info("attempt limiter using redis", "addr", app.cfg.RedisAddr)
		return
	}

	app.limiter = limiter.NewMemory(cfg)
	app.logger.Info("attempt limiter using in-process memory")
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.authService = &service.AuthenticationService{
		Store:     app.db,
		Catalog:   app.catalog,
		Devices:   app.devices,
		Limiter:   app.limiter,
		TwoFactor: service.TOTPVerifier{},
		Logger:    app.logger,
	}
	app.validationService = &service.ValidationService{
		Store:  app.db,
		Logger: app.logger,
	}
	app.refreshService = &service.RefreshService{
		Store:   app.db,
		Devices: app.devices,
		Logger:  app.logger,
	}
	app.revocationService = &service.RevocationService{
		Store:  app.db,
		Logger: app.logger,
	}
	app.sessionService = &service.SessionService{Store: app.db}
	app.bootstrapService = &service.BootstrapService{
		Store:  app.db,
		Logger: app.logger,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// seedAdmin creates the first admin principal on an empty database when
// ADMIN_EMAIL and ADMIN_PASSWORD are configured.
func (app *Application) seedAdmin() error {
	if app.cfg.AdminEmail == "" || app.cfg.AdminPassword == "" {
		return nil
	}

	_, err := app.bootstrapService.SeedAdmin(
		context.Background(), app.cfg.AdminEmail, app.cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to seed admin principal: %w", err)
	}
	return nil
}

// initHTTP builds the router and the HTTP server.
func (app *Application) initHTTP() {
	app.router = httpapi.NewRouter(BuildVersion, app.db, app.logger)
	app.router.AuthService = app.authService
	app.router.ValidationService = app.validationService
	app.router.RefreshService = app.refreshService
	app.router.RevocationService = app.revocationService
	app.router.SessionService = app.sessionService
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: app.router,
	}
}
