package config

const (
	// DefaultDatabaseURL points at a SQLite file in the working directory.
	DefaultDatabaseURL = "sqlite:///./library.db"

	// DefaultSessionSecret is only suitable for local development.
	DefaultSessionSecret = "dev-secret-change-me"

	DefaultSessionCookieName = "library_session"
)
