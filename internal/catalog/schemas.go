package catalog

import (
	"github.com/mrlokans/library/internal/database/books"
	"github.com/mrlokans/library/internal/entities"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// BookInput is the body of a create request.
type BookInput struct {
	Title       string `json:"title" binding:"required,max=255"`
	AuthorFirst string `json:"author_first" binding:"required,max=255"`
	AuthorLast  string `json:"author_last" binding:"required,max=255"`
	Year        string `json:"year" binding:"required,max=10"`
	ISBN        string `json:"isbn" binding:"required,max=32"`
	Available   *bool  `json:"available"`
}

func (in BookInput) toEntity() *entities.Book {
	available := true
	if in.Available != nil {
		available = *in.Available
	}
	return &entities.Book{
		Title:       in.Title,
		AuthorFirst: in.AuthorFirst,
		AuthorLast:  in.AuthorLast,
		Year:        in.Year,
		ISBN:        in.ISBN,
		Available:   available,
	}
}

// BookPatch is a partial update. Nil fields are left untouched; present
// string fields must not be empty.
type BookPatch struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=255"`
	AuthorFirst *string `json:"author_first" binding:"omitempty,min=1,max=255"`
	AuthorLast  *string `json:"author_last" binding:"omitempty,min=1,max=255"`
	Year        *string `json:"year" binding:"omitempty,min=1,max=10"`
	ISBN        *string `json:"isbn" binding:"omitempty,min=1,max=32"`
	Available   *bool   `json:"available"`
}

func (p BookPatch) columns() map[string]any {
	fields := map[string]any{}
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.AuthorFirst != nil {
		fields["author_first"] = *p.AuthorFirst
	}
	if p.AuthorLast != nil {
		fields["author_last"] = *p.AuthorLast
	}
	if p.Year != nil {
		fields["year"] = *p.Year
	}
	if p.ISBN != nil {
		fields["isbn"] = *p.ISBN
	}
	if p.Available != nil {
		fields["available"] = *p.Available
	}
	return fields
}

// SearchQuery holds the listing parameters taken from the query string.
type SearchQuery struct {
	Q        string `form:"q"`
	Author   string `form:"author"`
	YearFrom *int   `form:"year_from" binding:"omitempty,min=0"`
	YearTo   *int   `form:"year_to" binding:"omitempty,min=0"`
	Sort     string `form:"sort"`
	Page     *int   `form:"page" binding:"omitempty,min=1"`
	PageSize *int   `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Paginated is true when the caller asked for a page.
func (q SearchQuery) Paginated() bool {
	return q.Page != nil || q.PageSize != nil
}

func (q SearchQuery) filter() (books.Filter, int, int) {
	f := books.Filter{
		Query:    q.Q,
		Author:   q.Author,
		YearFrom: q.YearFrom,
		YearTo:   q.YearTo,
		Sort:     books.ParseSortKey(q.Sort),
	}
	if !q.Paginated() {
		return f, 1, 0
	}

	page, pageSize := DefaultPage, DefaultPageSize
	if q.Page != nil {
		page = *q.Page
	}
	if q.PageSize != nil {
		pageSize = *q.PageSize
	}
	f.Offset = (page - 1) * pageSize
	f.Limit = pageSize
	return f, page, pageSize
}

// SearchResult is one page of a listing. PageSize equals Total when the
// request was not paginated.
type SearchResult struct {
	Items    []entities.Book `json:"items"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}
