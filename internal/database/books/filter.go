package books

import (
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// SortKey names one of the supported listing orders.
type SortKey string

const (
	SortTitleAsc   SortKey = "title_asc"
	SortTitleDesc  SortKey = "title_desc"
	SortAuthorAsc  SortKey = "author_asc"
	SortAuthorDesc SortKey = "author_desc"
	SortYearAsc    SortKey = "year_asc"
	SortYearDesc   SortKey = "year_desc"
	SortNewest     SortKey = "newest"
)

// ParseSortKey maps a query value to a SortKey. Unknown or empty values
// fall back to SortTitleAsc.
func ParseSortKey(s string) SortKey {
	switch key := SortKey(s); key {
	case SortTitleAsc, SortTitleDesc, SortAuthorAsc, SortAuthorDesc, SortYearAsc, SortYearDesc, SortNewest:
		return key
	default:
		return SortTitleAsc
	}
}

// Years are stored as text; ordering by length first makes digit-only
// values sort numerically.
func (k SortKey) orderBy() string {
	switch k {
	case SortTitleDesc:
		return "title DESC, id ASC"
	case SortAuthorAsc:
		return "author_last ASC, author_first ASC, id ASC"
	case SortAuthorDesc:
		return "author_last DESC, author_first DESC, id ASC"
	case SortYearAsc:
		return "LENGTH(year) ASC, year ASC, id ASC"
	case SortYearDesc:
		return "LENGTH(year) DESC, year DESC, id ASC"
	case SortNewest:
		return "id DESC"
	default:
		return "title ASC, id ASC"
	}
}

// Filter narrows and orders a book search. A zero Limit returns every match.
type Filter struct {
	Query    string
	Author   string
	YearFrom *int
	YearTo   *int
	Sort     SortKey
	Offset   int
	Limit    int
}

func (f Filter) where(db *gorm.DB) *gorm.DB {
	if f.Query != "" {
		pattern := containsPattern(f.Query)
		db = db.Where(
			"(LOWER(title) LIKE LOWER(?) ESCAPE '\\' OR LOWER(author_first) LIKE LOWER(?) ESCAPE '\\' OR "+
				"LOWER(author_last) LIKE LOWER(?) ESCAPE '\\' OR LOWER(year) LIKE LOWER(?) ESCAPE '\\' OR "+
				"LOWER(isbn) LIKE LOWER(?) ESCAPE '\\')",
			pattern, pattern, pattern, pattern, pattern,
		)
	}
	if f.Author != "" {
		pattern := containsPattern(f.Author)
		db = db.Where(
			"(LOWER(author_first) LIKE LOWER(?) ESCAPE '\\' OR LOWER(author_last) LIKE LOWER(?) ESCAPE '\\')",
			pattern, pattern,
		)
	}
	if f.YearFrom != nil {
		year := strconv.Itoa(*f.YearFrom)
		db = db.Where("(LENGTH(year) > ? OR (LENGTH(year) = ? AND year >= ?))", len(year), len(year), year)
	}
	if f.YearTo != nil {
		year := strconv.Itoa(*f.YearTo)
		db = db.Where("(LENGTH(year) < ? OR (LENGTH(year) = ? AND year <= ?))", len(year), len(year), year)
	}
	return db
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s anywhere, with s's own
// wildcard characters taken literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
