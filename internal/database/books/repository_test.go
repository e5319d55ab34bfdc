package books

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
	dbPath := filepath.Join(t.TempDir(), "books.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Book{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return NewRepository(db)
}

func seed(t *testing.T, repo *Repository, books ...entities.Book) []entities.Book {
	t.Helper()
	for i := range books {
		require.NoError(t, repo.Create(context.Background(), &books[i]))
	}
	return books
}

func book(title, first, last, year, isbn string) entities.Book {
	return entities.Book{Title: title, AuthorFirst: first, AuthorLast: last, Year: year, ISBN: isbn, Available: true}
}

func titles(items []entities.Book) []string {
	out := make([]string, 0, len(items))
	for _, b := range items {
		out = append(out, b.Title)
	}
	return out
}

func intPtr(v int) *int { return &v }

func TestRepository_CreateKeepsExplicitUnavailable(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	b := book("Dune", "Frank", "Herbert", "1965", "isbn-dune")
	b.Available = false
	require.NoError(t, repo.Create(ctx, &b))
	require.NotZero(t, b.ID)

	stored, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, stored.Available)
}

func TestRepository_CreateDuplicateISBN(t *testing.T) {
	repo := setupTestDB(t)
	seed(t, repo, book("A", "x", "y", "2000", "same"))

	dup := book("B", "x", "y", "2001", "same")
	err := repo.Create(context.Background(), &dup)
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))
}

func TestRepository_Search_QueryMatchesAnyColumnCaseInsensitive(t *testing.T) {
	repo := setupTestDB(t)
	seed(t, repo,
		book("The Hobbit", "John", "Tolkien", "1937", "111"),
		book("Emma", "Jane", "Austen", "1815", "222"),
		book("Dracula", "Bram", "Stoker", "1897", "333-HOBBIT"),
	)

	items, total, err := repo.Search(context.Background(), Filter{Query: "hObBiT"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, []string{"Dracula", "The Hobbit"}, titles(items))

	items, _, err = repo.Search(context.Background(), Filter{Query: "1815"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Emma"}, titles(items))
}

func TestRepository_Search_WildcardsAreLiteral(t *testing.T) {
	repo := setupTestDB(t)
	seed(t, repo,
		book("100% Pure", "A", "B", "2001", "1"),
		book("Plain", "C", "D", "2002", "2"),
	)

	items, total, err := repo.Search(context.Background(), Filter{Query: "%"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, []string{"100% Pure"}, titles(items))
}

func TestRepository_Search_Author(t *testing.T) {
	repo := setupTestDB(t)
	seed(t, repo,
		book("Emma", "Jane", "Austen", "1815", "1"),
		book("Persuasion", "Jane", "Austen", "1817", "2"),
		book("Jane Eyre", "Charlotte", "Bronte", "1847", "3"),
	)

	items, total, err := repo.Search(context.Background(), Filter{Author: "JANE"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, []string{"Emma", "Persuasion"}, titles(items))
}

func TestRepository_Search_YearBoundsAreNumeric(t *testing.T) {
	repo := setupTestDB(t)
	seed(t, repo,
		book("Old", "a", "b", "999", "1"),
		book("Mid", "a", "b", "1500", "2"),
		book("New", "a", "b", "2020", "3"),
	)
	ctx := context.Background()

	items, _, err := repo.Search(ctx, Filter{YearFrom: intPtr(1000)})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Mid", "New"}, titles(items))

	items, _, err = repo.Search(ctx, Filter{YearTo: intPtr(1500)})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Old", "Mid"}, titles(items))

	items, _, err = repo.Search(ctx, Filter{YearFrom: intPtr(1500), YearTo: intPtr(1500)})
	require.NoError(t, err)
	assert.Equal(t, []string{"Mid"}, titles(items))

	items, total, err := repo.Search(ctx, Filter{YearFrom: intPtr(2000), YearTo: intPtr(1000)})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}

func TestRepository_Search_ZeroYearBounds(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	seed(t, repo,
		book("Zero", "a", "b", "0", "z"),
		book("Old", "a", "b", "800", "o"),
		book("New", "a", "b", "1999", "n"),
	)

	items, total, err := repo.Search(ctx, Filter{YearFrom: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.ElementsMatch(t, []string{"Zero", "Old", "New"}, titles(items))

	items, _, err = repo.Search(ctx, Filter{YearTo: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, []string{"Zero"}, titles(items))
}

func TestRepository_Search_Sorting(t *testing.T) {
	repo := setupTestDB(t)
	seed(t, repo,
		book("B", "Zed", "Adams", "1999", "1"),
		book("A", "Amy", "Baker", "2005", "2"),
		book("C", "Bob", "Adams", "987", "3"),
	)
	ctx := context.Background()

	tests := []struct {
		sort SortKey
		want []string
	}{
		{SortTitleAsc, []string{"A", "B", "C"}},
		{SortTitleDesc, []string{"C", "B", "A"}},
		{SortAuthorAsc, []string{"C", "B", "A"}},
		{SortAuthorDesc, []string{"A", "B", "C"}},
		{SortYearAsc, []string{"C", "B", "A"}},
		{SortYearDesc, []string{"A", "B", "C"}},
		{SortNewest, []string{"C", "A", "B"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			items, _, err := repo.Search(ctx, Filter{Sort: tt.sort})
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(items))
		})
	}
}

func TestRepository_Search_Pagination(t *testing.T) {
	repo := setupTestDB(t)
	seed(t, repo,
		book("A", "x", "y", "2000", "1"),
		book("B", "x", "y", "2000", "2"),
		book("C", "x", "y", "2000", "3"),
	)
	ctx := context.Background()

	items, total, err := repo.Search(ctx, Filter{Offset: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"C"}, titles(items))

	items, total, err = repo.Search(ctx, Filter{Offset: 10, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestRepository_UpdateAndDelete(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	stored := seed(t, repo, book("Old", "x", "y", "2000", "1"))[0]

	require.NoError(t, repo.Update(ctx, stored.ID, map[string]any{"title": "New", "available": false}))
	updated, err := repo.GetByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "x", updated.AuthorFirst)
	assert.False(t, updated.Available)

	found, err := repo.FindByISBN(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, found.ID)

	affected, err := repo.Delete(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	_, err = repo.GetByID(ctx, stored.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	affected, err = repo.Delete(ctx, stored.ID)
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestParseSortKey(t *testing.T) {
	assert.Equal(t, SortNewest, ParseSortKey("newest"))
	assert.Equal(t, SortYearDesc, ParseSortKey("year_desc"))
	assert.Equal(t, SortTitleAsc, ParseSortKey(""))
	assert.Equal(t, SortTitleAsc, ParseSortKey("price_asc"))
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, `%abc%`, containsPattern("abc"))
	assert.Equal(t, `%50\%\_off\\%`, containsPattern(`50%_off\`))
}
