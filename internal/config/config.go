package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// SessionBackend selects where session state lives.
type SessionBackend string

const (
	SessionBackendCookie SessionBackend = "cookie" // Signed cookie, no server-side state (default)
	SessionBackendServer SessionBackend = "server" // scs sessions stored in the SQLite database
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		Log
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		URL       string
		SeedAdmin bool
	}
	Auth struct {
		SessionSecret     string
		SessionCookieName string
		SessionLifetime   time.Duration
		SessionBackend    SessionBackend
		SecureCookies     bool // Off by default; enable behind HTTPS
		CSRFEnabled       bool
		BcryptCost        int

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	Log struct {
		Level string
		Debug bool
	}
)

// UsesDefaultSecret reports whether the session secret was left at its development value.
func (a Auth) UsesDefaultSecret() bool {
	return a.SessionSecret == DefaultSessionSecret
}

// getSessionSecret returns the signing secret, accepting the legacy LIBRARY_SECRET_KEY name.
func getSessionSecret(v *viper.Viper) string {
	if secret := v.GetString("SESSION_SECRET"); secret != "" {
		return secret
	}
	if secret := v.GetString("LIBRARY_SECRET_KEY"); secret != "" {
		return secret
	}
	return DefaultSessionSecret
}

func NewConfig() *Config {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_url", DefaultDatabaseURL)
	v.SetDefault("seed_admin", true)

	v.SetDefault("session_cookie_name", DefaultSessionCookieName)
	v.SetDefault("session_lifetime", "720h") // 30 days
	v.SetDefault("session_backend", string(SessionBackendCookie))
	v.SetDefault("secure_cookies", false)
	v.SetDefault("csrf_enabled", true)
	v.SetDefault("bcrypt_cost", 12)
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_rate_limit_window", "15m")
	v.SetDefault("auth_lockout_duration", "30m")

	v.SetDefault("log_level", "info")
	v.SetDefault("debug", false)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			URL:       v.GetString("DATABASE_URL"),
			SeedAdmin: v.GetBool("SEED_ADMIN"),
		},
		Auth: Auth{
			SessionSecret:     getSessionSecret(v),
			SessionCookieName: v.GetString("SESSION_COOKIE_NAME"),
			SessionLifetime:   v.GetDuration("SESSION_LIFETIME"),
			SessionBackend:    SessionBackend(v.GetString("SESSION_BACKEND")),
			SecureCookies:     v.GetBool("SECURE_COOKIES"),
			CSRFEnabled:       v.GetBool("CSRF_ENABLED"),
			BcryptCost:        v.GetInt("BCRYPT_COST"),
			MaxLoginAttempts:  v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:   v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:   v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Log: Log{
			Level: v.GetString("LOG_LEVEL"),
			Debug: v.GetBool("DEBUG"),
		},
	}
}
