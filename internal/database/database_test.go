package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/library/internal/entities"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		dialect Dialect
		dsn     string
		path    string
	}{
		{"empty uses default", "", DialectSQLite, "./library.db?_busy_timeout=5000", "./library.db"},
		{"relative sqlite", "sqlite:///./library.db", DialectSQLite, "./library.db?_busy_timeout=5000", "./library.db"},
		{"absolute sqlite", "sqlite:////var/lib/library.db", DialectSQLite, "/var/lib/library.db?_busy_timeout=5000", "/var/lib/library.db"},
		{"sqlite memory", "sqlite://", DialectSQLite, ":memory:", ":memory:"},
		{"bare memory", ":memory:", DialectSQLite, ":memory:", ":memory:"},
		{"bare path", "data/library.db", DialectSQLite, "data/library.db?_busy_timeout=5000", "data/library.db"},
		{"file uri", "file:test.db?cache=shared", DialectSQLite, "file:test.db?cache=shared", "test.db"},
		{"postgres", "postgres://u:p@localhost:5432/lib", DialectPostgres, "postgres://u:p@localhost:5432/lib", ""},
		{"postgresql", "postgresql://u:p@localhost/lib", DialectPostgres, "postgres://u:p@localhost/lib", ""},
		{"driver suffix", "postgresql+psycopg2://u:p@db/lib", DialectPostgres, "postgres://u:p@db/lib", ""},
		{"managed host forces tls", "postgres://u:p@ep-1.us-east-2.aws.neon.tech/lib", DialectPostgres, "postgres://u:p@ep-1.us-east-2.aws.neon.tech/lib?sslmode=require", ""},
		{"managed host keeps stricter tls", "postgres://u:p@x.render.com/lib?sslmode=verify-full", DialectPostgres, "postgres://u:p@x.render.com/lib?sslmode=verify-full", ""},
		{"managed host upgrades disable", "postgres://u:p@x.supabase.co/lib?sslmode=disable", DialectPostgres, "postgres://u:p@x.supabase.co/lib?sslmode=require", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := ParseURL(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.dialect, target.Dialect)
			assert.Equal(t, tt.dsn, target.DSN)
			assert.Equal(t, tt.path, target.Path)
		})
	}
}

func TestParseURL_UnsupportedScheme(t *testing.T) {
	_, err := ParseURL("mysql://u:p@localhost/lib")
	assert.Error(t, err)
}

func TestNewDatabase_MigratesSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "library.db")

	db, err := NewDatabase("sqlite:///"+dbPath, logger.Silent)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, DialectSQLite, db.Dialect)
	assert.True(t, db.DB.Migrator().HasTable(&entities.Book{}))
	assert.True(t, db.DB.Migrator().HasTable(&entities.User{}))
	assert.True(t, db.DB.Migrator().HasIndex(&entities.Book{}, "ISBN"))
	require.NoError(t, db.Ping(context.Background()))
}

func TestNewDatabase_InMemoryKeepsSchema(t *testing.T) {
	db, err := NewDatabase(":memory:", logger.Silent)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.DB.Create(&entities.User{Username: "a", PasswordHash: "h"}).Error)
	var count int64
	require.NoError(t, db.DB.Model(&entities.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
}
