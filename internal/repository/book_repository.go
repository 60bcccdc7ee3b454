package repository

import (
	"context"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/library-circulation/internal/domain"
)

const bookColumns = `id, title, author, genre, available_copies, total_copies, has_digital_copy, created_at`

var searchDialect = goqu.Dialect("postgres")

type bookRepository struct {
	db *sqlx.DB
}

func NewBookRepository(db *sqlx.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *domain.Book) error {
	query := `
		INSERT INTO books (title, author, genre, available_copies, total_copies, has_digital_copy)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	return conn(ctx, r.db).QueryRowxContext(ctx, query,
		book.Title,
		book.Author,
		book.Genre,
		book.AvailableCopies,
		book.TotalCopies,
		book.HasDigitalCopy,
	).Scan(&book.ID, &book.CreatedAt)
}

func (r *bookRepository) GetByID(ctx context.Context, id int64) (*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	var book domain.Book
	if err := conn(ctx, r.db).GetContext(ctx, &book, query, id); err != nil {
		return nil, err
	}

	return &book, nil
}

func (r *bookRepository) Update(ctx context.Context, book *domain.Book) error {
	query := `
		UPDATE books
		SET title = $2, author = $3, genre = $4, available_copies = $5, total_copies = $6, has_digital_copy = $7
		WHERE id = $1
	`

	return execAffecting(ctx, conn(ctx, r.db), query,
		book.ID,
		book.Title,
		book.Author,
		book.Genre,
		book.AvailableCopies,
		book.TotalCopies,
		book.HasDigitalCopy,
	)
}

func (r *bookRepository) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, conn(ctx, r.db), `DELETE FROM books WHERE id = $1`, id)
}

func (r *bookRepository) List(ctx context.Context) ([]*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY title, id`

	var books []*domain.Book
	if err := conn(ctx, r.db).SelectContext(ctx, &books, query); err != nil {
		return nil, err
	}

	return books, nil
}

func (r *bookRepository) Search(ctx context.Context, request domain.BookSearchRequest) ([]*domain.Book, error) {
	query, args, err := buildSearchQuery(request)
	if err != nil {
		return nil, err
	}

	var books []*domain.Book
	if err := conn(ctx, r.db).SelectContext(ctx, &books, query, args...); err != nil {
		return nil, err
	}

	return books, nil
}

func buildSearchQuery(request domain.BookSearchRequest) (string, []interface{}, error) {
	ds := searchDialect.
		From("books").
		Select("id", "title", "author", "genre", "available_copies", "total_copies", "has_digital_copy", "created_at").
		Order(goqu.C("title").Asc(), goqu.C("id").Asc())

	if keyword := strings.TrimSpace(request.Keyword); keyword != "" {
		pattern := "%" + keyword + "%"
		ds = ds.Where(goqu.Or(
			goqu.C("title").ILike(pattern),
			goqu.C("author").ILike(pattern),
			goqu.C("genre").ILike(pattern),
		))
	} else {
		if title := strings.TrimSpace(request.Title); title != "" {
			ds = ds.Where(goqu.C("title").ILike("%" + title + "%"))
		}
		if author := strings.TrimSpace(request.Author); author != "" {
			ds = ds.Where(goqu.C("author").ILike("%" + author + "%"))
		}
		if genre := strings.TrimSpace(request.Genre); genre != "" {
			ds = ds.Where(goqu.Func("LOWER", goqu.C("genre")).Eq(strings.ToLower(genre)))
		}
	}

	if request.AvailableOnly {
		ds = ds.Where(goqu.C("available_copies").Gt(0))
	}
	if request.DigitalOnly {
		ds = ds.Where(goqu.C("has_digital_copy").IsTrue())
	}

	return ds.Prepared(true).ToSQL()
}

func (r *bookRepository) ListGenres(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT genre FROM books WHERE genre <> '' ORDER BY genre`

	var genres []string
	if err := conn(ctx, r.db).SelectContext(ctx, &genres, query); err != nil {
		return nil, err
	}

	return genres, nil
}

func (r *bookRepository) MostBorrowed(ctx context.Context, limit int) ([]*domain.Book, error) {
	query := `
		SELECT b.id, b.title, b.author, b.genre, b.available_copies, b.total_copies, b.has_digital_copy, b.created_at
		FROM books b
		JOIN borrowings br ON br.book_id = b.id
		GROUP BY b.id
		ORDER BY COUNT(br.id) DESC, b.title
		LIMIT $1
	`

	var books []*domain.Book
	if err := conn(ctx, r.db).SelectContext(ctx, &books, query, limit); err != nil {
		return nil, err
	}

	return books, nil
}

func (r *bookRepository) AdjustAvailable(ctx context.Context, id int64, delta int) error {
	query := `
		UPDATE books
		SET available_copies = available_copies + $2
		WHERE id = $1 AND available_copies + $2 >= 0 AND available_copies + $2 <= total_copies
	`

	return execAffecting(ctx, conn(ctx, r.db), query, id, delta)
}

func (r *bookRepository) SetHasDigitalCopy(ctx context.Context, id int64, has bool) error {
	return execAffecting(ctx, conn(ctx, r.db), `UPDATE books SET has_digital_copy = $2 WHERE id = $1`, id, has)
}

func (r *bookRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := conn(ctx, r.db).GetContext(ctx, &n, `SELECT COUNT(*) FROM books`)
	return n, err
}
