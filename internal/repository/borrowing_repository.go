package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/segyhp/library-circulation/internal/domain"
)

// borrowingSelect flattens the book and member summaries into dotted
// aliases so sqlx can scan them into the nested structs.
const borrowingSelect = `
	SELECT
		br.id, br.borrow_date, br.due_date, br.return_date, br.fine,
		b.id AS "book.id", b.title AS "book.title", b.author AS "book.author", b.genre AS "book.genre",
		m.id AS "member.id", m.full_name AS "member.full_name", m.email AS "member.email"
	FROM borrowings br
	JOIN books b ON b.id = br.book_id
	JOIN members m ON m.id = br.member_id
`

type borrowingRepository struct {
	db *sqlx.DB
}

func NewBorrowingRepository(db *sqlx.DB) BorrowingRepository {
	return &borrowingRepository{db: db}
}

func (r *borrowingRepository) Create(ctx context.Context, borrowing *domain.Borrowing) error {
	query := `
		INSERT INTO borrowings (member_id, book_id, borrow_date, due_date, fine)
		VALUES ($1, $2, $3, $4, 0)
		RETURNING id
	`

	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		borrowing.Member.ID,
		borrowing.Book.ID,
		borrowing.BorrowDate,
		borrowing.DueDate,
	).Scan(&borrowing.ID)
	if err != nil {
		return err
	}

	borrowing.Fine = decimal.NewNullDecimal(decimal.Zero)
	return nil
}

func (r *borrowingRepository) GetByID(ctx context.Context, id int64) (*domain.Borrowing, error) {
	var borrowing domain.Borrowing
	if err := conn(ctx, r.db).GetContext(ctx, &borrowing, borrowingSelect+` WHERE br.id = $1`, id); err != nil {
		return nil, err
	}
	return &borrowing, nil
}

func (r *borrowingRepository) ListByMember(ctx context.Context, memberID int64, filter BorrowingFilter) ([]*domain.Borrowing, error) {
	query := borrowingSelect + ` WHERE br.member_id = $1`

	switch filter {
	case BorrowingsCurrent:
		query += ` AND br.return_date IS NULL ORDER BY br.due_date, br.id`
	case BorrowingsHistory:
		query += ` AND br.return_date IS NOT NULL ORDER BY br.return_date DESC, br.id DESC`
	default:
		query += ` ORDER BY br.id`
	}

	return r.selectBorrowings(ctx, query, memberID)
}

func (r *borrowingRepository) ListByBook(ctx context.Context, bookID int64) ([]*domain.Borrowing, error) {
	return r.selectBorrowings(ctx, borrowingSelect+` WHERE br.book_id = $1 ORDER BY br.borrow_date DESC, br.id DESC`, bookID)
}

func (r *borrowingRepository) ListAll(ctx context.Context) ([]*domain.Borrowing, error) {
	return r.selectBorrowings(ctx, borrowingSelect+` ORDER BY br.borrow_date DESC, br.id DESC`)
}

func (r *borrowingRepository) ListOverdue(ctx context.Context, day domain.Date) ([]*domain.Borrowing, error) {
	return r.selectBorrowings(ctx, borrowingSelect+` WHERE br.return_date IS NULL AND br.due_date < $1 ORDER BY br.due_date, br.id`, day)
}

func (r *borrowingRepository) selectBorrowings(ctx context.Context, query string, args ...interface{}) ([]*domain.Borrowing, error) {
	var borrowings []*domain.Borrowing
	if err := conn(ctx, r.db).SelectContext(ctx, &borrowings, query, args...); err != nil {
		return nil, err
	}
	return borrowings, nil
}

func (r *borrowingRepository) CountActiveByMember(ctx context.Context, memberID int64) (int64, error) {
	var n int64
	err := conn(ctx, r.db).GetContext(ctx, &n,
		`SELECT COUNT(*) FROM borrowings WHERE member_id = $1 AND return_date IS NULL`, memberID)
	return n, err
}

func (r *borrowingRepository) HasActive(ctx context.Context, memberID, bookID int64) (bool, error) {
	var exists bool
	err := conn(ctx, r.db).GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM borrowings WHERE member_id = $1 AND book_id = $2 AND return_date IS NULL)`,
		memberID, bookID)
	return exists, err
}

func (r *borrowingRepository) MarkReturned(ctx context.Context, id int64, returnDate domain.Date, fine decimal.Decimal) error {
	query := `
		UPDATE borrowings
		SET return_date = $2, fine = $3
		WHERE id = $1 AND return_date IS NULL
	`

	return execAffecting(ctx, conn(ctx, r.db), query, id, returnDate, fine)
}

func (r *borrowingRepository) Extend(ctx context.Context, id int64, dueDate domain.Date) error {
	query := `
		UPDATE borrowings
		SET due_date = $2, renew_count = renew_count + 1
		WHERE id = $1 AND return_date IS NULL
	`

	return execAffecting(ctx, conn(ctx, r.db), query, id, dueDate)
}

func (r *borrowingRepository) UpdateFine(ctx context.Context, id int64, fine decimal.Decimal) error {
	query := `UPDATE borrowings SET fine = $2 WHERE id = $1 AND return_date IS NULL`

	return execAffecting(ctx, conn(ctx, r.db), query, id, fine)
}

func (r *borrowingRepository) TotalFinesByMember(ctx context.Context, memberID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := conn(ctx, r.db).GetContext(ctx, &total,
		`SELECT COALESCE(SUM(fine), 0) FROM borrowings WHERE member_id = $1`, memberID)
	return total, err
}

func (r *borrowingRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := conn(ctx, r.db).GetContext(ctx, &n, `SELECT COUNT(*) FROM borrowings WHERE return_date IS NULL`)
	return n, err
}

func (r *borrowingRepository) CountOverdue(ctx context.Context, day domain.Date) (int64, error) {
	var n int64
	err := conn(ctx, r.db).GetContext(ctx, &n,
		`SELECT COUNT(*) FROM borrowings WHERE return_date IS NULL AND due_date < $1`, day)
	return n, err
}
