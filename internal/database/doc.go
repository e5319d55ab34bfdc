// Package database opens the application's relational store and owns schema
// migration.
//
// # Architecture
//
//	database/
//	├── database.go  # Connection setup, migrations, constraint helpers
//	├── url.go       # DATABASE_URL parsing and normalization
//	├── books/       # Book queries (search, CRUD)
//	└── users/       # User lookups and inserts
//
// SQLite is the default backend. Setting DATABASE_URL to a postgres:// URL
// switches to PostgreSQL through lib/pq:
//
//	db, err := database.NewDatabase("sqlite:///./library.db", logger.Warn)
//	booksRepo := books.NewRepository(db.DB)
//
// Repositories are thin and take a *gorm.DB, so the same code runs against
// the pool or inside a transaction:
//
//	db.DB.Transaction(func(tx *gorm.DB) error {
//		return books.NewRepository(tx).Create(ctx, book)
//	})
package database
