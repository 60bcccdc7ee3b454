package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/segyhp/library-circulation/internal/domain"
)

// Not-found lookups return sql.ErrNoRows; callers wrap it into a business error.

// BookRepository defines the interface for catalog data operations
type BookRepository interface {
	// Create inserts a book and fills in its ID and CreatedAt
	Create(ctx context.Context, book *domain.Book) error

	GetByID(ctx context.Context, id int64) (*domain.Book, error)

	// Update overwrites the editable fields and both copy counters
	Update(ctx context.Context, book *domain.Book) error

	Delete(ctx context.Context, id int64) error

	List(ctx context.Context) ([]*domain.Book, error)

	// Search applies the keyword or field filters of the request
	Search(ctx context.Context, request domain.BookSearchRequest) ([]*domain.Book, error)

	ListGenres(ctx context.Context) ([]string, error)

	// MostBorrowed orders books by their total number of borrowings
	MostBorrowed(ctx context.Context, limit int) ([]*domain.Book, error)

	// AdjustAvailable moves available_copies by delta, staying within [0, total_copies].
	// It returns sql.ErrNoRows when the book is missing or the bound would be crossed.
	AdjustAvailable(ctx context.Context, id int64, delta int) error

	SetHasDigitalCopy(ctx context.Context, id int64, has bool) error

	Count(ctx context.Context) (int64, error)
}

// MemberRepository defines the interface for member profile operations
type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) error

	GetByID(ctx context.Context, id int64) (*domain.Member, error)

	GetByUserID(ctx context.Context, userID int64) (*domain.Member, error)

	ExistsByEmail(ctx context.Context, email string) (bool, error)

	List(ctx context.Context) ([]*domain.Member, error)

	Update(ctx context.Context, member *domain.Member) error

	Delete(ctx context.Context, id int64) error

	Count(ctx context.Context) (int64, error)
}

// UserRepository defines the interface for login account operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error

	GetByID(ctx context.Context, id int64) (*domain.User, error)

	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	ExistsByUsername(ctx context.Context, username string) (bool, error)

	ExistsByRole(ctx context.Context, role string) (bool, error)

	List(ctx context.Context) ([]*domain.User, error)

	UpdateRole(ctx context.Context, id int64, role string) error

	Delete(ctx context.Context, id int64) error
}

// BorrowingFilter selects which borrowings of a member are listed.
// Current means unreturned, History means returned.
type BorrowingFilter int

const (
	BorrowingsAll BorrowingFilter = iota
	BorrowingsCurrent
	BorrowingsHistory
)

// BorrowingRepository defines the interface for loan records
type BorrowingRepository interface {
	// Create inserts a borrowing for borrowing.Member.ID and borrowing.Book.ID and fills in its ID
	Create(ctx context.Context, borrowing *domain.Borrowing) error

	GetByID(ctx context.Context, id int64) (*domain.Borrowing, error)

	ListByMember(ctx context.Context, memberID int64, filter BorrowingFilter) ([]*domain.Borrowing, error)

	ListByBook(ctx context.Context, bookID int64) ([]*domain.Borrowing, error)

	ListAll(ctx context.Context) ([]*domain.Borrowing, error)

	// ListOverdue returns unreturned borrowings whose due date lies before day
	ListOverdue(ctx context.Context, day domain.Date) ([]*domain.Borrowing, error)

	CountActiveByMember(ctx context.Context, memberID int64) (int64, error)

	HasActive(ctx context.Context, memberID, bookID int64) (bool, error)

	// MarkReturned sets the terminal return date and fine of an unreturned borrowing.
	// It returns sql.ErrNoRows when the borrowing was already returned.
	MarkReturned(ctx context.Context, id int64, returnDate domain.Date, fine decimal.Decimal) error

	// Extend moves the due date of an unreturned borrowing and counts the renewal
	Extend(ctx context.Context, id int64, dueDate domain.Date) error

	// UpdateFine sets the accrued fine of an unreturned borrowing.
	// A returned borrowing keeps the fine charged on return and yields sql.ErrNoRows.
	UpdateFine(ctx context.Context, id int64, fine decimal.Decimal) error

	TotalFinesByMember(ctx context.Context, memberID int64) (decimal.Decimal, error)

	CountActive(ctx context.Context) (int64, error)

	CountOverdue(ctx context.Context, day domain.Date) (int64, error)
}

// WishlistRepository defines the interface for saved-for-later books
type WishlistRepository interface {
	ListByMember(ctx context.Context, memberID int64) ([]*domain.WishlistItem, error)

	Exists(ctx context.Context, memberID, bookID int64) (bool, error)

	Add(ctx context.Context, memberID, bookID int64) (*domain.WishlistItem, error)

	// Remove returns sql.ErrNoRows when the book was not on the list
	Remove(ctx context.Context, memberID, bookID int64) error
}

// DigitalBookRepository defines the interface for uploaded electronic copies
type DigitalBookRepository interface {
	Create(ctx context.Context, digitalBook *domain.DigitalBook) error

	GetByID(ctx context.Context, id int64) (*domain.DigitalBook, error)

	GetByFileName(ctx context.Context, fileName string) (*domain.DigitalBook, error)

	List(ctx context.Context) ([]*domain.DigitalBook, error)

	ListByBook(ctx context.Context, bookID int64) ([]*domain.DigitalBook, error)

	ListByFormat(ctx context.Context, format string) ([]*domain.DigitalBook, error)

	Delete(ctx context.Context, id int64) error

	CountByBook(ctx context.Context, bookID int64) (int64, error)
}
