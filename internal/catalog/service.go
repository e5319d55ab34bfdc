// Package catalog implements the book catalog operations on top of the
// books repository. Every mutation runs in its own transaction.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"

	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/database/books"
	"github.com/mrlokans/library/internal/entities"
)

var (
	ErrBookNotFound  = errors.New("book not found")
	ErrDuplicateISBN = errors.New("book already exists")
)

// ErrInvalidQuery is returned for pagination values outside the allowed range.
var ErrInvalidQuery = errors.New("invalid search query")

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Search lists books matching q. Without page or page_size every match is
// returned as a single page.
func (s *Service) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}

	filter, page, pageSize := q.filter()
	items, total, err := books.NewRepository(s.db).Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	if !q.Paginated() {
		pageSize = int(total)
	}

	return &SearchResult{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*entities.Book, error) {
	book, err := books.NewRepository(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "get book")
	}
	return book, nil
}

func (s *Service) Create(ctx context.Context, in BookInput) (*entities.Book, error) {
	book := in.toEntity()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := books.NewRepository(tx)

		if err := ensureISBNFree(ctx, repo, book.ISBN, 0); err != nil {
			return err
		}
		if err := repo.Create(ctx, book); err != nil {
			if database.IsUniqueViolation(err) {
				return ErrDuplicateISBN
			}
			return fmt.Errorf("create book: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// Update applies the non-nil fields of patch and returns the stored row.
func (s *Service) Update(ctx context.Context, id uint, patch BookPatch) (*entities.Book, error) {
	var updated *entities.Book

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := books.NewRepository(tx)

		current, err := repo.GetByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "load book")
		}

		if patch.ISBN != nil && *patch.ISBN != current.ISBN {
			if err := ensureISBNFree(ctx, repo, *patch.ISBN, id); err != nil {
				return err
			}
		}

		if err := repo.Update(ctx, id, patch.columns()); err != nil {
			if database.IsUniqueViolation(err) {
				return ErrDuplicateISBN
			}
			return fmt.Errorf("update book: %w", err)
		}

		updated, err = repo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("reload book: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := books.NewRepository(tx)

		if _, err := repo.GetByID(ctx, id); err != nil {
			return notFoundOr(err, "load book")
		}
		if _, err := repo.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete book: %w", err)
		}
		return nil
	})
}

func ensureISBNFree(ctx context.Context, repo *books.Repository, isbn string, ownerID uint) error {
	existing, err := repo.FindByISBN(ctx, isbn)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check isbn: %w", err)
	case existing.ID != ownerID:
		return ErrDuplicateISBN
	}
	return nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrBookNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func validateQuery(q SearchQuery) error {
	if q.Page != nil && *q.Page < 1 {
		return fmt.Errorf("%w: page must be at least 1", ErrInvalidQuery)
	}
	if q.PageSize != nil && (*q.PageSize < 1 || *q.PageSize > MaxPageSize) {
		return fmt.Errorf("%w: page_size must be between 1 and %d", ErrInvalidQuery, MaxPageSize)
	}
	if q.Page != nil {
		pageSize := DefaultPageSize
		if q.PageSize != nil {
			pageSize = *q.PageSize
		}
		// The row offset (page-1)*pageSize must fit in an int.
		if *q.Page-1 > math.MaxInt/pageSize {
			return fmt.Errorf("%w: page is too large", ErrInvalidQuery)
		}
	}
	if q.YearFrom != nil && *q.YearFrom < 0 {
		return fmt.Errorf("%w: year_from must not be negative", ErrInvalidQuery)
	}
	if q.YearTo != nil && *q.YearTo < 0 {
		return fmt.Errorf("%w: year_to must not be negative", ErrInvalidQuery)
	}
	return nil
}
