package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/library-circulation/internal/config"
	"github.com/segyhp/library-circulation/internal/domain"
	"github.com/segyhp/library-circulation/internal/repository"
	customError "github.com/segyhp/library-circulation/pkg/errors"
	"github.com/segyhp/library-circulation/pkg/utils"
)

// AnyMember skips the ownership check on return and renew
const AnyMember int64 = 0

type BorrowingService struct {
	BorrowingRepo repository.BorrowingRepository
	BookRepo      repository.BookRepository
	Tx            repository.Transactor
	cache         Cache
	config        *config.Config

	// Now is the clock used for loan dates and fines
	Now func() time.Time
}

func NewBorrowingService(
	borrowingRepo repository.BorrowingRepository,
	bookRepo repository.BookRepository,
	tx repository.Transactor,
	cache Cache,
	config *config.Config,
) *BorrowingService {
	return &BorrowingService{
		BorrowingRepo: borrowingRepo,
		BookRepo:      bookRepo,
		Tx:            tx,
		cache:         cache,
		config:        config,
		Now:           time.Now,
	}
}

func (s *BorrowingService) today() domain.Date {
	return domain.NewDate(s.Now().In(s.config.GetSchedulerLocation()))
}

// Borrow lends one copy of a book to a member for the configured loan period
func (s *BorrowingService) Borrow(ctx context.Context, memberID, bookID int64) (*domain.Borrowing, error) {
	var borrowing *domain.Borrowing

	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		book, err := s.BookRepo.GetByID(ctx, bookID)
		if err != nil {
			return lookupError(err, customError.WrapBookNotFound(bookID))
		}

		active, err := s.BorrowingRepo.HasActive(ctx, memberID, bookID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		if active {
			return customError.WrapAlreadyBorrowed(bookID)
		}

		count, err := s.BorrowingRepo.CountActiveByMember(ctx, memberID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		if limit := s.config.Business.MaxActiveBorrowings; count >= int64(limit) {
			return customError.WrapBorrowLimitReached(limit)
		}

		if !book.IsAvailable() {
			return customError.WrapNoCopiesAvailable(bookID)
		}

		// the guarded decrement loses against a concurrent borrow of the last copy
		if err := s.BookRepo.AdjustAvailable(ctx, bookID, -1); err != nil {
			return lookupError(err, customError.WrapNoCopiesAvailable(bookID))
		}

		borrowDate := s.today()
		created := &domain.Borrowing{
			Book:       domain.BookSummary{ID: bookID},
			Member:     domain.MemberSummary{ID: memberID},
			BorrowDate: borrowDate,
			DueDate:    domain.NewDate(utils.CalculateDueDate(borrowDate.Time, s.config.Business.LoanPeriodDays)),
		}
		if err := s.BorrowingRepo.Create(ctx, created); err != nil {
			return customError.WrapDatabaseError(err)
		}

		borrowing, err = s.BorrowingRepo.GetByID(ctx, created.ID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.cache, cacheKeyBooks, cacheKeyPopular, cacheKeyDashboard)
	slog.InfoContext(ctx, "book borrowed",
		"borrowing_id", borrowing.ID,
		"member_id", memberID,
		"book_id", bookID,
		"due_date", borrowing.DueDate.String(),
	)

	return borrowing, nil
}

// Return closes a borrowing and assesses the late fine.
// memberID must own the borrowing unless it is AnyMember.
func (s *BorrowingService) Return(ctx context.Context, borrowingID, memberID int64) (*domain.Borrowing, error) {
	var returned *domain.Borrowing

	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		borrowing, err := s.loadOwned(ctx, borrowingID, memberID)
		if err != nil {
			return err
		}
		if borrowing.IsReturned() {
			return customError.WrapAlreadyReturned(borrowingID)
		}

		returnDate := s.today()
		fine := utils.CalculateFine(borrowing.DaysLate(returnDate), s.config.GetFineDailyRate())

		if err := s.BorrowingRepo.MarkReturned(ctx, borrowingID, returnDate, fine); err != nil {
			return lookupError(err, customError.WrapAlreadyReturned(borrowingID))
		}

		if err := s.BookRepo.AdjustAvailable(ctx, borrowing.Book.ID, 1); err != nil {
			return customError.WrapDatabaseError(err)
		}

		returned, err = s.BorrowingRepo.GetByID(ctx, borrowingID)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.cache, cacheKeyBooks, cacheKeyDashboard)
	slog.InfoContext(ctx, "book returned",
		"borrowing_id", borrowingID,
		"book_id", returned.Book.ID,
		"fine", returned.Fine.Decimal.StringFixed(2),
	)

	return returned, nil
}

// Renew extends an unreturned, not yet overdue borrowing by the renew period
func (s *BorrowingService) Renew(ctx context.Context, borrowingID, memberID int64) (*domain.Borrowing, error) {
	borrowing, err := s.loadOwned(ctx, borrowingID, memberID)
	if err != nil {
		return nil, err
	}
	if borrowing.IsReturned() {
		return nil, customError.WrapAlreadyReturned(borrowingID)
	}
	if borrowing.IsOverdueOn(s.today()) {
		return nil, customError.WrapRenewOverdue(borrowingID)
	}

	dueDate := borrowing.DueDate.AddDays(s.config.Business.RenewPeriodDays)
	if err := s.BorrowingRepo.Extend(ctx, borrowingID, dueDate); err != nil {
		return nil, lookupError(err, customError.WrapAlreadyReturned(borrowingID))
	}

	borrowing.DueDate = dueDate
	slog.InfoContext(ctx, "borrowing renewed", "borrowing_id", borrowingID, "due_date", dueDate.String())

	return borrowing, nil
}

func (s *BorrowingService) loadOwned(ctx context.Context, borrowingID, memberID int64) (*domain.Borrowing, error) {
	borrowing, err := s.BorrowingRepo.GetByID(ctx, borrowingID)
	if err != nil {
		return nil, lookupError(err, customError.WrapBorrowingNotFound(borrowingID))
	}
	if memberID != AnyMember && borrowing.Member.ID != memberID {
		return nil, customError.WrapNotBorrower(borrowingID)
	}
	return borrowing, nil
}

func (s *BorrowingService) Get(ctx context.Context, id int64) (*domain.Borrowing, error) {
	borrowing, err := s.BorrowingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, customError.WrapBorrowingNotFound(id))
	}
	return borrowing, nil
}

// Current lists the unreturned borrowings of a member
func (s *BorrowingService) Current(ctx context.Context, memberID int64) ([]*domain.Borrowing, error) {
	return s.ByMember(ctx, memberID, repository.BorrowingsCurrent)
}

// History lists the returned borrowings of a member
func (s *BorrowingService) History(ctx context.Context, memberID int64) ([]*domain.Borrowing, error) {
	return s.ByMember(ctx, memberID, repository.BorrowingsHistory)
}

func (s *BorrowingService) ByMember(ctx context.Context, memberID int64, filter repository.BorrowingFilter) ([]*domain.Borrowing, error) {
	borrowings, err := s.BorrowingRepo.ListByMember(ctx, memberID, filter)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return borrowings, nil
}

func (s *BorrowingService) ByBook(ctx context.Context, bookID int64) ([]*domain.Borrowing, error) {
	borrowings, err := s.BorrowingRepo.ListByBook(ctx, bookID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return borrowings, nil
}

func (s *BorrowingService) All(ctx context.Context) ([]*domain.Borrowing, error) {
	borrowings, err := s.BorrowingRepo.ListAll(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return borrowings, nil
}

// Overdue lists unreturned borrowings whose due date has passed
func (s *BorrowingService) Overdue(ctx context.Context) ([]*domain.Borrowing, error) {
	borrowings, err := s.BorrowingRepo.ListOverdue(ctx, s.today())
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return borrowings, nil
}

// AccrueFines recomputes the running fine of every overdue borrowing.
// It returns the number of records whose fine changed.
func (s *BorrowingService) AccrueFines(ctx context.Context) (int, error) {
	today := s.today()

	overdue, err := s.BorrowingRepo.ListOverdue(ctx, today)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	rate := s.config.GetFineDailyRate()
	updated := 0

	for _, borrowing := range overdue {
		fine := utils.CalculateFine(borrowing.DaysLate(today), rate)
		if borrowing.Fine.Valid && borrowing.Fine.Decimal.Equal(fine) {
			continue
		}

		if err := s.BorrowingRepo.UpdateFine(ctx, borrowing.ID, fine); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return updated, customError.WrapDatabaseError(err)
		}
		updated++
	}

	slog.InfoContext(ctx, "fines accrued", "overdue", len(overdue), "updated", updated)

	return updated, nil
}

func (s *BorrowingService) TotalFines(ctx context.Context, memberID int64) (decimal.Decimal, error) {
	total, err := s.BorrowingRepo.TotalFinesByMember(ctx, memberID)
	if err != nil {
		return decimal.Zero, customError.WrapDatabaseError(err)
	}
	return total, nil
}
