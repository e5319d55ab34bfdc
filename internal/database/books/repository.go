// Package books provides database operations for the book catalog.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	items, total, err := repo.Search(ctx, books.Filter{Query: "tolkien", Limit: 20})
package books

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/library/internal/entities"
)

// Columns written on insert. Listing them explicitly keeps an explicit
// Available=false from being replaced by the column default.
var insertColumns = []string{"Title", "AuthorFirst", "AuthorLast", "Year", "ISBN", "Available"}

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Search returns the page of books matching filter together with the
// number of matching rows before pagination.
func (r *Repository) Search(ctx context.Context, filter Filter) ([]entities.Book, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entities.Book{}).Scopes(filter.where).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.WithContext(ctx).Model(&entities.Book{}).Scopes(filter.where).Order(filter.Sort.orderBy())
	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}

	items := []entities.Book{}
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// GetByID returns gorm.ErrRecordNotFound when no book has the id.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.WithContext(ctx).First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// FindByISBN returns the book holding isbn, or gorm.ErrRecordNotFound.
func (r *Repository) FindByISBN(ctx context.Context, isbn string) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.WithContext(ctx).Where("isbn = ?", isbn).First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *Repository) Create(ctx context.Context, book *entities.Book) error {
	return r.db.WithContext(ctx).Select(insertColumns).Create(book).Error
}

// Update writes the given columns. Keys are column names.
func (r *Repository) Update(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entities.Book{}).Where("id = ?", id).Updates(fields).Error
}

// Delete removes the book and reports how many rows were affected.
func (r *Repository) Delete(ctx context.Context, id uint) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&entities.Book{}, id)
	return result.RowsAffected, result.Error
}
