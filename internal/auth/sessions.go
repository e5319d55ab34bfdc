package auth

import (
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"

	"github.com/mrlokans/library/internal/config"
)

const (
	sessionKeyUserID     = "user_id"
	contextKeySessionUID = "session_user_id"
)

// SessionStore remembers which user a browser is logged in as.
type SessionStore interface {
	// LoadAndSave must run before any other session call in the chain.
	LoadAndSave() gin.HandlerFunc
	Login(c *gin.Context, userID uint) error
	Logout(c *gin.Context) error
	// UserID returns 0 for anonymous requests.
	UserID(c *gin.Context) uint
}

// NewSessionStore builds the store selected by cfg.SessionBackend. The
// server backend needs the SQLite handle to keep its sessions table in.
func NewSessionStore(cfg config.Auth, sqliteDB *sql.DB) (SessionStore, error) {
	switch cfg.SessionBackend {
	case config.SessionBackendServer:
		if sqliteDB == nil {
			return nil, errors.New("server-side sessions require a SQLite database")
		}
		return NewServerSessions(sqliteDB, cfg)
	case config.SessionBackendCookie, "":
		return NewCookieSessions(cfg), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}

// CookieSessions keeps the user id in an HMAC-signed cookie; nothing is
// stored server side.
type CookieSessions struct {
	codec    *securecookie.SecureCookie
	name     string
	lifetime time.Duration
	secure   bool
}

type cookiePayload struct {
	UserID uint `json:"user_id"`
}

func NewCookieSessions(cfg config.Auth) *CookieSessions {
	hashKey := sha256.Sum256([]byte(cfg.SessionSecret))
	codec := securecookie.New(hashKey[:], nil)
	codec.MaxAge(int(cfg.SessionLifetime.Seconds()))
	codec.SetSerializer(securecookie.JSONEncoder{})

	return &CookieSessions{
		codec:    codec,
		name:     cfg.SessionCookieName,
		lifetime: cfg.SessionLifetime,
		secure:   cfg.SecureCookies,
	}
}

// LoadAndSave decodes the session cookie. Tampered or expired cookies are
// treated as anonymous.
func (s *CookieSessions) LoadAndSave() gin.HandlerFunc {
	return func(c *gin.Context) {
		var userID uint
		if cookie, err := c.Request.Cookie(s.name); err == nil {
			var payload cookiePayload
			if err := s.codec.Decode(s.name, cookie.Value, &payload); err == nil {
				userID = payload.UserID
			}
		}
		c.Set(contextKeySessionUID, userID)
		c.Next()
	}
}

func (s *CookieSessions) Login(c *gin.Context, userID uint) error {
	encoded, err := s.codec.Encode(s.name, cookiePayload{UserID: userID})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	s.writeCookie(c, encoded, int(s.lifetime.Seconds()))
	c.Set(contextKeySessionUID, userID)
	return nil
}

func (s *CookieSessions) Logout(c *gin.Context) error {
	s.writeCookie(c, "", -1)
	c.Set(contextKeySessionUID, uint(0))
	return nil
}

func (s *CookieSessions) UserID(c *gin.Context) uint {
	return c.GetUint(contextKeySessionUID)
}

func (s *CookieSessions) writeCookie(c *gin.Context, value string, maxAge int) {
	cookie := &http.Cookie{
		Name:     s.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge > 0 {
		cookie.Expires = time.Now().Add(time.Duration(maxAge) * time.Second)
	}
	http.SetCookie(c.Writer, cookie)
}

// ServerSessions stores session data in the SQLite sessions table and only
// hands the browser an opaque token.
type ServerSessions struct {
	*scs.SessionManager
}

// NewServerSessions creates the sessions table when missing.
func NewServerSessions(sqlDB *sql.DB, cfg config.Auth) (*ServerSessions, error) {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)
	sm.Lifetime = cfg.SessionLifetime

	sm.Cookie.Name = cfg.SessionCookieName
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Persist = true

	return &ServerSessions{SessionManager: sm}, nil
}

// Login renews the token so a pre-login session id cannot be reused.
func (s *ServerSessions) Login(c *gin.Context, userID uint) error {
	ctx := c.Request.Context()
	if err := s.RenewToken(ctx); err != nil {
		return err
	}
	s.Put(ctx, sessionKeyUserID, int(userID))
	return nil
}

func (s *ServerSessions) Logout(c *gin.Context) error {
	return s.Destroy(c.Request.Context())
}

func (s *ServerSessions) UserID(c *gin.Context) uint {
	return uint(s.GetInt(c.Request.Context(), sessionKeyUserID))
}
