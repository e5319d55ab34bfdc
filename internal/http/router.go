package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/auth"
	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/logging"
	"github.com/mrlokans/library/internal/web"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	if cfg.Books == nil || cfg.AuthService == nil || cfg.Sessions == nil {
		return nil, errors.New("router requires a book store, an auth service and a session store")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	useWireFieldNames()

	router := gin.New()
	router.Use(logging.RequestLogger(logger))
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}))
	router.Use(auth.SecurityHeadersMiddleware())
	router.Use(auth.StrictTransportSecurityMiddleware())

	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(tmpl)
	router.StaticFS("/static", web.Static())

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	// Everything below sees the session and the CSRF token. The session
	// loads first so anonymous requests reach the auth guards.
	router.Use(cfg.Sessions.LoadAndSave())
	if len(cfg.CSRFKey) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFKey, cfg.SecureCookies, auth.AnonymousOnly(cfg.Sessions)))
	}

	guard := auth.NewMiddleware(cfg.AuthService, cfg.Sessions, logger)
	pages := NewPagesController(cfg.Books, logger)
	books := NewBooksController(cfg.Books, logger)

	router.GET("/", guard.OptionalUser(pages.Index))
	router.GET("/books", guard.OptionalUser(pages.Books))
	router.GET("/add", guard.RequirePageUser(pages.Add))
	router.GET("/edit/:id", guard.RequirePageUser(pages.Edit))

	auth.NewAuthController(cfg.AuthService, cfg.Sessions, cfg.LoginLimiter, logger).RegisterRoutes(router)

	api := router.Group("/api/books")
	api.GET("", books.Search)
	api.GET("/:id", books.Get)
	api.POST("", guard.RequireUser(books.Create))
	api.PATCH("/:id", guard.RequireUser(books.Update))
	api.DELETE("/:id", guard.RequireUser(books.Delete))

	router.NoRoute(guard.OptionalUser(func(c *gin.Context, user *entities.User) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			respondNotFound(c, "Not found.")
			return
		}
		pages.renderError(c, http.StatusNotFound, user, "Page not found.")
	}))

	return router, nil
}
