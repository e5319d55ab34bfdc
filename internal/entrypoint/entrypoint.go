package entrypoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/auth"
	"github.com/mrlokans/library/internal/catalog"
	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/database"
	http_controllers "github.com/mrlokans/library/internal/http"
	"github.com/mrlokans/library/internal/logging"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM, then drains it within
// the configured shutdown timeout.
func Serve(router http.Handler, cfg *config.Config, logger *zap.Logger, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case sig := <-quit:
		logger.Info("shutting down server", zap.String("signal", sig.String()), zap.Duration("timeout", timeout))
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server exiting")
	return nil
}

// OpenDatabase connects, migrates and, for SQLite with an empty users
// table, seeds the default administrator.
func OpenDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*database.Database, error) {
	db, err := database.NewDatabase(cfg.Database.URL, logging.GormLogLevel(cfg.Log.Debug))
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	logger.Info("database ready", zap.String("dialect", string(db.Dialect)))

	if db.Dialect == database.DialectSQLite && cfg.Database.SeedAdmin {
		seeded, err := auth.NewService(db.DB, cfg.Auth).SeedDefaultAdmin(ctx)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("seed default admin: %w", err)
		}
		if seeded {
			logger.Warn("created default user admin/admin, change the password or disable SEED_ADMIN")
		}
	}
	return db, nil
}

// App is a fully wired application ready to be served.
type App struct {
	Router  *gin.Engine
	DB      *database.Database
	limiter *auth.LoginLimiter
}

// Close releases the background resources held by the app.
func (a *App) Close() error {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	return a.DB.Close()
}

// Build wires services, sessions and the router around an open database.
func Build(cfg *config.Config, db *database.Database, logger *zap.Logger, version string) (*App, error) {
	// The server-side session store only lives in SQLite.
	var sqliteDB *sql.DB
	if db.Dialect == database.DialectSQLite {
		var err error
		if sqliteDB, err = db.DB.DB(); err != nil {
			return nil, err
		}
	}
	sessions, err := auth.NewSessionStore(cfg.Auth, sqliteDB)
	if err != nil {
		return nil, fmt.Errorf("initialize sessions: %w", err)
	}

	limiter := auth.NewLoginLimiter(cfg.Auth)

	routerCfg := http_controllers.RouterConfig{
		Logger:        logger,
		Database:      db,
		Books:         catalog.NewService(db.DB),
		AuthService:   auth.NewService(db.DB, cfg.Auth),
		Sessions:      sessions,
		LoginLimiter:  limiter,
		SecureCookies: cfg.Auth.SecureCookies,
		Version:       version,
	}
	if cfg.Auth.CSRFEnabled {
		routerCfg.CSRFKey = auth.CSRFKey(cfg.Auth.SessionSecret)
	}

	router, err := http_controllers.NewRouter(routerCfg)
	if err != nil {
		limiter.Stop()
		return nil, err
	}
	return &App{Router: router, DB: db, limiter: limiter}, nil
}

// Run starts the library server and blocks until it shuts down.
func Run(cfg *config.Config, version string) error {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Debug)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting library", zap.String("version", version))
	if !cfg.Log.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Auth.UsesDefaultSecret() {
		logger.Warn("SESSION_SECRET is not set, sessions are signed with the development secret")
	}

	db, err := OpenDatabase(context.Background(), cfg, logger)
	if err != nil {
		return err
	}

	app, err := Build(cfg, db, logger, version)
	if err != nil {
		db.Close()
		return err
	}

	onShutdown := func(ctx context.Context) {
		if err := app.Close(); err != nil {
			logger.Error("error closing database", zap.Error(err))
		}
	}

	return Serve(app.Router, cfg, logger, onShutdown)
}
