package http

import (
	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/auth"
	"github.com/mrlokans/library/internal/database"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	Logger   *zap.Logger
	Database *database.Database

	Books BookStore

	AuthService  *auth.Service
	Sessions     auth.SessionStore
	LoginLimiter *auth.LoginLimiter // optional

	// CSRFKey enables CSRF protection when non-empty.
	CSRFKey       []byte
	SecureCookies bool

	Version string
}
