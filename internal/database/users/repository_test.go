package users

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "users.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return NewRepository(db)
}

func TestRepository_CreateAndLookup(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	user := &entities.User{Username: "alice", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotZero(t, user.ID)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)
	assert.Equal(t, "hash", byName.PasswordHash)
}

func TestRepository_GetByUsernameIsExact(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &entities.User{Username: "alice", PasswordHash: "h"}))

	_, err := repo.GetByUsername(ctx, "ali")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_DuplicateUsername(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &entities.User{Username: "bob", PasswordHash: "h"}))

	err := repo.Create(ctx, &entities.User{Username: "bob", PasswordHash: "h2"})
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))
}

func TestRepository_Count(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, repo.Create(ctx, &entities.User{Username: "carol", PasswordHash: "h"}))
	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepository_GetByIDMissing(t *testing.T) {
	repo := setupTestDB(t)
	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
