package entities

// Book is a catalog entry. Year is free text (e.g. "1949"), so range
// filters compare it by length first and then lexically.
type Book struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"index;size:255;not null" json:"title"`
	AuthorFirst string `gorm:"index;size:255;not null" json:"author_first"`
	AuthorLast  string `gorm:"index;size:255;not null" json:"author_last"`
	Year        string `gorm:"index;size:10;not null" json:"year"`
	ISBN        string `gorm:"column:isbn;uniqueIndex;size:32;not null" json:"isbn"`
	Available   bool   `gorm:"not null;default:true" json:"available"`
}
