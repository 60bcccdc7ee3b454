package domain

import (
	"strings"
	"time"
)

// Digital file formats
const (
	FormatPDF  = "PDF"
	FormatEPUB = "EPUB"
	FormatMOBI = "MOBI"
)

// DigitalBook is an uploaded electronic copy of a catalog book
type DigitalBook struct {
	ID         int64     `json:"id" db:"id"`
	BookID     int64     `json:"bookId" db:"book_id"`
	BookTitle  string    `json:"bookTitle,omitempty" db:"book_title"`
	FileFormat string    `json:"fileFormat" db:"file_format"`
	FileName   string    `json:"fileName" db:"file_name"`
	FileURL    string    `json:"fileUrl" db:"file_url"`
	SizeBytes  int64     `json:"sizeBytes" db:"size_bytes"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// NormalizeFormat upper-cases a format and reports whether it is supported
func NormalizeFormat(format string) (string, bool) {
	f := strings.ToUpper(strings.TrimSpace(format))
	switch f {
	case FormatPDF, FormatEPUB, FormatMOBI:
		return f, true
	}
	return f, false
}

// ContentType returns the MIME type served for a format
func ContentType(format string) string {
	switch strings.ToUpper(format) {
	case FormatPDF:
		return "application/pdf"
	case FormatEPUB:
		return "application/epub+zip"
	case FormatMOBI:
		return "application/x-mobipocket-ebook"
	default:
		return "application/octet-stream"
	}
}
