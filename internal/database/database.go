package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/library/internal/entities"
)

type Database struct {
	DB      *gorm.DB
	Dialect Dialect
}

// NewDatabase connects to the database described by rawURL and migrates the schema.
func NewDatabase(rawURL string, logLevel logger.LogLevel) (*Database, error) {
	target, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	if target.Dialect == DialectSQLite {
		if err := ensureParentDir(target.Path); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(target.dialector(), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if target.Dialect == DialectSQLite && target.Path == memoryPath {
		// Every new connection to :memory: opens an empty database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return &Database{DB: db, Dialect: target.Dialect}, nil
}

// Migrate creates or updates the books and users tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entities.User{}, &entities.Book{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (target Target) dialector() gorm.Dialector {
	if target.Dialect == DialectPostgres {
		return postgres.New(postgres.Config{
			DriverName: "postgres",
			DSN:        target.DSN,
		})
	}
	return sqlite.Open(target.DSN)
}

func ensureParentDir(path string) error {
	if path == memoryPath {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create db dir: %w", err)
		}
	}
	return nil
}

func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// IsUniqueViolation reports whether err was caused by a unique constraint,
// whichever driver produced it.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}
