package database

import (
	"fmt"
	"net/url"
	"strings"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

const (
	memoryPath       = ":memory:"
	DefaultSQLiteURL = "sqlite:///./library.db"
)

// Hosted Postgres providers that refuse unencrypted connections.
var managedPostgresSuffixes = []string{
	".neon.tech",
	".supabase.co",
	".render.com",
	".rds.amazonaws.com",
}

// Target is a normalized connection description.
type Target struct {
	Dialect Dialect
	// DSN is what the driver receives.
	DSN string
	// Path is the SQLite file path, empty for Postgres.
	Path string
}

// ParseURL turns a DATABASE_URL value into a driver target.
//
//	sqlite:///./library.db          -> SQLite file ./library.db
//	sqlite:////var/lib/library.db   -> SQLite file /var/lib/library.db
//	postgresql+psycopg2://u:p@h/db  -> postgres://u:p@h/db
func ParseURL(raw string) (Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = DefaultSQLiteURL
	}

	switch {
	case raw == memoryPath:
		return sqliteTarget(memoryPath), nil
	case strings.HasPrefix(raw, "sqlite://"):
		path := strings.TrimPrefix(raw, "sqlite://")
		if path == "" || path == "/" {
			return sqliteTarget(memoryPath), nil
		}
		if strings.HasPrefix(path, "/") {
			path = path[1:]
		}
		return sqliteTarget(path), nil
	case strings.HasPrefix(raw, "file:"):
		path := strings.TrimPrefix(raw, "file:")
		if i := strings.IndexByte(path, '?'); i >= 0 {
			path = path[:i]
		}
		return Target{Dialect: DialectSQLite, DSN: raw, Path: path}, nil
	case !strings.Contains(raw, "://"):
		return sqliteTarget(raw), nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, fmt.Errorf("invalid database url: %w", err)
	}

	scheme := strings.ToLower(u.Scheme)
	if i := strings.IndexByte(scheme, '+'); i >= 0 {
		scheme = scheme[:i]
	}
	if scheme != "postgres" && scheme != "postgresql" {
		return Target{}, fmt.Errorf("unsupported database scheme %q", u.Scheme)
	}
	u.Scheme = "postgres"

	if isManagedPostgres(u.Hostname()) {
		query := u.Query()
		switch query.Get("sslmode") {
		case "require", "verify-ca", "verify-full":
		default:
			query.Set("sslmode", "require")
			u.RawQuery = query.Encode()
		}
	}

	return Target{Dialect: DialectPostgres, DSN: u.String()}, nil
}

func sqliteTarget(path string) Target {
	dsn := path
	if path != memoryPath {
		dsn = path + "?_busy_timeout=5000"
	}
	return Target{Dialect: DialectSQLite, DSN: dsn, Path: path}
}

func isManagedPostgres(host string) bool {
	host = strings.ToLower(host)
	for _, suffix := range managedPostgresSuffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}
