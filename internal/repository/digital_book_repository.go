package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/segyhp/library-circulation/internal/domain"
)

const digitalBookSelect = `
	SELECT d.id, d.book_id, b.title AS book_title, d.file_format, d.file_name, d.file_url, d.size_bytes, d.created_at
	FROM digital_books d
	JOIN books b ON b.id = d.book_id
`

type digitalBookRepository struct {
	db *sqlx.DB
}

func NewDigitalBookRepository(db *sqlx.DB) DigitalBookRepository {
	return &digitalBookRepository{db: db}
}

func (r *digitalBookRepository) Create(ctx context.Context, digitalBook *domain.DigitalBook) error {
	query := `
		INSERT INTO digital_books (book_id, file_format, file_name, file_url, size_bytes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	return conn(ctx, r.db).QueryRowxContext(ctx, query,
		digitalBook.BookID,
		digitalBook.FileFormat,
		digitalBook.FileName,
		digitalBook.FileURL,
		digitalBook.SizeBytes,
	).Scan(&digitalBook.ID, &digitalBook.CreatedAt)
}

func (r *digitalBookRepository) GetByID(ctx context.Context, id int64) (*domain.DigitalBook, error) {
	var digitalBook domain.DigitalBook
	if err := conn(ctx, r.db).GetContext(ctx, &digitalBook, digitalBookSelect+` WHERE d.id = $1`, id); err != nil {
		return nil, err
	}
	return &digitalBook, nil
}

func (r *digitalBookRepository) GetByFileName(ctx context.Context, fileName string) (*domain.DigitalBook, error) {
	var digitalBook domain.DigitalBook
	if err := conn(ctx, r.db).GetContext(ctx, &digitalBook, digitalBookSelect+` WHERE d.file_name = $1`, fileName); err != nil {
		return nil, err
	}
	return &digitalBook, nil
}

func (r *digitalBookRepository) List(ctx context.Context) ([]*domain.DigitalBook, error) {
	return r.selectDigitalBooks(ctx, digitalBookSelect+` ORDER BY d.created_at DESC, d.id DESC`)
}

func (r *digitalBookRepository) ListByBook(ctx context.Context, bookID int64) ([]*domain.DigitalBook, error) {
	return r.selectDigitalBooks(ctx, digitalBookSelect+` WHERE d.book_id = $1 ORDER BY d.file_format`, bookID)
}

func (r *digitalBookRepository) ListByFormat(ctx context.Context, format string) ([]*domain.DigitalBook, error) {
	return r.selectDigitalBooks(ctx, digitalBookSelect+` WHERE d.file_format = $1 ORDER BY b.title`, format)
}

func (r *digitalBookRepository) selectDigitalBooks(ctx context.Context, query string, args ...interface{}) ([]*domain.DigitalBook, error) {
	var digitalBooks []*domain.DigitalBook
	if err := conn(ctx, r.db).SelectContext(ctx, &digitalBooks, query, args...); err != nil {
		return nil, err
	}
	return digitalBooks, nil
}

func (r *digitalBookRepository) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, conn(ctx, r.db), `DELETE FROM digital_books WHERE id = $1`, id)
}

func (r *digitalBookRepository) CountByBook(ctx context.Context, bookID int64) (int64, error) {
	var n int64
	err := conn(ctx, r.db).GetContext(ctx, &n, `SELECT COUNT(*) FROM digital_books WHERE book_id = $1`, bookID)
	return n, err
}
