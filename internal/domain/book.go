package domain

import "time"

// Book is a catalog entry with its copy counters
type Book struct {
	ID              int64     `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Author          string    `json:"author" db:"author"`
	Genre           string    `json:"genre" db:"genre"`
	AvailableCopies int       `json:"availableCopies" db:"available_copies"`
	TotalCopies     int       `json:"totalCopies" db:"total_copies"`
	HasDigitalCopy  bool      `json:"hasDigitalCopy" db:"has_digital_copy"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

// IsAvailable reports whether at least one copy can be borrowed
func (b Book) IsAvailable() bool {
	return b.AvailableCopies > 0
}

// BookSummary is the part of a book embedded in borrowings and wishlist entries
type BookSummary struct {
	ID     int64  `json:"id" db:"id"`
	Title  string `json:"title" db:"title"`
	Author string `json:"author" db:"author"`
	Genre  string `json:"genre" db:"genre"`
}

type BookRequest struct {
	Title          string `json:"title" validate:"required,max=255"`
	Author         string `json:"author" validate:"required,max=255"`
	Genre          string `json:"genre" validate:"max=100"`
	TotalCopies    *int   `json:"totalCopies" validate:"omitempty,gte=0"`
	HasDigitalCopy *bool  `json:"hasDigitalCopy"`
}

// BookSearchRequest filters the catalog. Keyword wins over the field filters.
type BookSearchRequest struct {
	Keyword       string `json:"keyword"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Genre         string `json:"genre"`
	AvailableOnly bool   `json:"availableOnly"`
	DigitalOnly   bool   `json:"digitalOnly"`
}
