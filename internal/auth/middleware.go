package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/entities"
)

// UserHandler is a gin handler that receives the resolved session user.
// The user is nil only for handlers wrapped with OptionalUser.
type UserHandler func(c *gin.Context, user *entities.User)

// Middleware resolves the session user and guards handlers with it.
type Middleware struct {
	service  *Service
	sessions SessionStore
	logger   *zap.Logger
}

func NewMiddleware(service *Service, sessions SessionStore, logger *zap.Logger) *Middleware {
	return &Middleware{service: service, sessions: sessions, logger: logger}
}

// CurrentUser maps the session to a user. Anonymous sessions and sessions
// pointing at a missing user yield nil without an error.
func (m *Middleware) CurrentUser(c *gin.Context) (*entities.User, error) {
	userID := m.sessions.UserID(c)
	if userID == 0 {
		return nil, nil
	}

	user, err := m.service.GetUserByID(c.Request.Context(), userID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, nil
	}
	return user, err
}

// OptionalUser passes the user through when logged in and nil otherwise.
func (m *Middleware) OptionalUser(h UserHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := m.resolve(c)
		if !ok {
			return
		}
		h(c, user)
	}
}

// RequireUser answers anonymous API calls with 401.
func (m *Middleware) RequireUser(h UserHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := m.resolve(c)
		if !ok {
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		h(c, user)
	}
}

// RequirePageUser sends anonymous browsers to the login form.
func (m *Middleware) RequirePageUser(h UserHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := m.resolve(c)
		if !ok {
			return
		}
		if user == nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		h(c, user)
	}
}

func (m *Middleware) resolve(c *gin.Context) (*entities.User, bool) {
	user, err := m.CurrentUser(c)
	if err != nil {
		m.logger.Error("failed to resolve session user", zap.Error(err), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return nil, false
	}
	return user, true
}
