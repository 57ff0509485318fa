package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/metagate-hq/platform/internal/platform/http"
	"github.com/metagate-hq/platform/internal/platform/service"
	"github.com/metagate-hq/platform/internal/platform/store"
	"github.com/metagate-hq/platform/internal/platform/store/drivers/sqlite"
	"github.com/metagate-hq/platform/pkg/cryptox"
	"github.com/metagate-hq/platform/pkg/jwtx"
	"github.com/metagate-hq/platform/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application wires the store, services and HTTP server together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	signer *jwtx.Signer

	credentialService   *service.CredentialService
	tokenService        *service.TokenService
	authService         *service.AuthService
	accountService      *service.AccountService
	adminService        *service.AdminService
	tenancyService      *service.TenancyService
	housekeepingService *service.HousekeepingService
	bootstrapService    *service.BootstrapService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "platform",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	signer, err := jwtx.NewSigner([]byte(cfg.SigningSecret), cfg.Algorithm, cfg.Issuer)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize token signer: %w", err)
	}
	app.signer = signer

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	ctx := context.Background()
	if err := app.bootstrapService.EnsureAdmin(ctx,
		app.cfg.BootstrapEmail, app.cfg.BootstrapUsername, app.cfg.BootstrapPassword); err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}

	app.housekeepingService.Start()

	app.logger.Info("platform starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown stops the HTTP server, housekeeping loop and store in order.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down platform...")

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

	app.logger.Info("platform stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied")
	return nil
}

func (app *Application) initServices() error {
	pepper, err := cryptox.LoadPepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}

	params := cryptox.DefaultArgon2Params()
	if app.cfg.HashMemoryKiB > 0 {
		params.Memory = app.cfg.HashMemoryKiB
	}
	if app.cfg.HashIterations > 0 {
		params.Iterations = app.cfg.HashIterations
	}

	app.credentialService = service.NewCredentialService(params, pepper, app.cfg.HashConcurrency)
	app.tokenService = service.NewTokenService(app.signer, app.db, app.cfg.AccessTTL, app.cfg.RefreshTTL)
	app.authService = service.NewAuthService(app.db, app.credentialService, app.tokenService, app.logger, app.cfg.StoreTimeout)
	app.accountService = service.NewAccountService(app.db, app.cfg.StoreTimeout)
	app.adminService = service.NewAdminService(app.db, app.logger, app.cfg.StoreTimeout)
	app.tenancyService = service.NewTenancyService(app.db, app.cfg.StoreTimeout)
	app.housekeepingService = service.NewHousekeepingService(app.db, app.logger, app.cfg.HousekeepingInterval)
	app.bootstrapService = service.NewBootstrapService(app.db, app.credentialService, app.logger)
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.signer, BuildVersion, app.db, app.logger)

	router.AuthService = app.authService
	router.AccountService = app.accountService
	router.AdminService = app.adminService
	router.TenancyService = app.tenancyService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
