package mocks

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/library-circulation/internal/domain"
	"github.com/segyhp/library-circulation/internal/repository"
)

type MockBookRepository struct {
	mock.Mock
}

func (m *MockBookRepository) Create(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *MockBookRepository) GetByID(ctx context.Context, id int64) (*domain.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *MockBookRepository) Update(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *MockBookRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookRepository) List(ctx context.Context) ([]*domain.Book, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Book), args.Error(1)
}

func (m *MockBookRepository) Search(ctx context.Context, request domain.BookSearchRequest) ([]*domain.Book, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Book), args.Error(1)
}

func (m *MockBookRepository) ListGenres(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockBookRepository) MostBorrowed(ctx context.Context, limit int) ([]*domain.Book, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Book), args.Error(1)
}

func (m *MockBookRepository) AdjustAvailable(ctx context.Context, id int64, delta int) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func (m *MockBookRepository) SetHasDigitalCopy(ctx context.Context, id int64, has bool) error {
	args := m.Called(ctx, id, has)
	return args.Error(0)
}

func (m *MockBookRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) Create(ctx context.Context, member *domain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockMemberRepository) GetByID(ctx context.Context, id int64) (*domain.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Member, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockMemberRepository) List(ctx context.Context) ([]*domain.Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) Update(ctx context.Context, member *domain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockMemberRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMemberRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByRole(ctx context.Context, role string) (bool, error) {
	args := m.Called(ctx, role)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id int64, role string) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockBorrowingRepository struct {
	mock.Mock
}

func (m *MockBorrowingRepository) Create(ctx context.Context, borrowing *domain.Borrowing) error {
	args := m.Called(ctx, borrowing)
	return args.Error(0)
}

func (m *MockBorrowingRepository) GetByID(ctx context.Context, id int64) (*domain.Borrowing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Borrowing), args.Error(1)
}

func (m *MockBorrowingRepository) ListByMember(ctx context.Context, memberID int64, filter repository.BorrowingFilter) ([]*domain.Borrowing, error) {
	args := m.Called(ctx, memberID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Borrowing), args.Error(1)
}

func (m *MockBorrowingRepository) ListByBook(ctx context.Context, bookID int64) ([]*domain.Borrowing, error) {
	args := m.Called(ctx, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Borrowing), args.Error(1)
}

func (m *MockBorrowingRepository) ListAll(ctx context.Context) ([]*domain.Borrowing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Borrowing), args.Error(1)
}

func (m *MockBorrowingRepository) ListOverdue(ctx context.Context, day domain.Date) ([]*domain.Borrowing, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Borrowing), args.Error(1)
}

func (m *MockBorrowingRepository) CountActiveByMember(ctx context.Context, memberID int64) (int64, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBorrowingRepository) HasActive(ctx context.Context, memberID, bookID int64) (bool, error) {
	args := m.Called(ctx, memberID, bookID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBorrowingRepository) MarkReturned(ctx context.Context, id int64, returnDate domain.Date, fine decimal.Decimal) error {
	args := m.Called(ctx, id, returnDate, fine)
	return args.Error(0)
}

func (m *MockBorrowingRepository) Extend(ctx context.Context, id int64, dueDate domain.Date) error {
	args := m.Called(ctx, id, dueDate)
	return args.Error(0)
}

func (m *MockBorrowingRepository) UpdateFine(ctx context.Context, id int64, fine decimal.Decimal) error {
	args := m.Called(ctx, id, fine)
	return args.Error(0)
}

func (m *MockBorrowingRepository) TotalFinesByMember(ctx context.Context, memberID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockBorrowingRepository) CountActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBorrowingRepository) CountOverdue(ctx context.Context, day domain.Date) (int64, error) {
	args := m.Called(ctx, day)
	return args.Get(0).(int64), args.Error(1)
}

type MockWishlistRepository struct {
	mock.Mock
}

func (m *MockWishlistRepository) ListByMember(ctx context.Context, memberID int64) ([]*domain.WishlistItem, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.WishlistItem), args.Error(1)
}

func (m *MockWishlistRepository) Exists(ctx context.Context, memberID, bookID int64) (bool, error) {
	args := m.Called(ctx, memberID, bookID)
	return args.Bool(0), args.Error(1)
}

func (m *MockWishlistRepository) Add(ctx context.Context, memberID, bookID int64) (*domain.WishlistItem, error) {
	args := m.Called(ctx, memberID, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WishlistItem), args.Error(1)
}

func (m *MockWishlistRepository) Remove(ctx context.Context, memberID, bookID int64) error {
	args := m.Called(ctx, memberID, bookID)
	return args.Error(0)
}

type MockDigitalBookRepository struct {
	mock.Mock
}

func (m *MockDigitalBookRepository) Create(ctx context.Context, digitalBook *domain.DigitalBook) error {
	args := m.Called(ctx, digitalBook)
	return args.Error(0)
}

func (m *MockDigitalBookRepository) GetByID(ctx context.Context, id int64) (*domain.DigitalBook, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DigitalBook), args.Error(1)
}

func (m *MockDigitalBookRepository) GetByFileName(ctx context.Context, fileName string) (*domain.DigitalBook, error) {
	args := m.Called(ctx, fileName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DigitalBook), args.Error(1)
}

func (m *MockDigitalBookRepository) List(ctx context.Context) ([]*domain.DigitalBook, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DigitalBook), args.Error(1)
}

func (m *MockDigitalBookRepository) ListByBook(ctx context.Context, bookID int64) ([]*domain.DigitalBook, error) {
	args := m.Called(ctx, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DigitalBook), args.Error(1)
}

func (m *MockDigitalBookRepository) ListByFormat(ctx context.Context, format string) ([]*domain.DigitalBook, error) {
	args := m.Called(ctx, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DigitalBook), args.Error(1)
}

func (m *MockDigitalBookRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDigitalBookRepository) CountByBook(ctx context.Context, bookID int64) (int64, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).(int64), args.Error(1)
}

// Transactor runs the unit of work inline without a database
type Transactor struct{}

func (Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
