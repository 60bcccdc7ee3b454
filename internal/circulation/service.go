// Package circulation drives borrow, return and renew from the client side.
//
// Mutating actions are deduplicated per resource and update the local catalog
// optimistically. Fines shown after a return are the server's, never recomputed.
package circulation

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/segyhp/library-circulation/internal/catalog"
	"github.com/segyhp/library-circulation/internal/domain"
	"github.com/segyhp/library-circulation/internal/inflight"
	"github.com/segyhp/library-circulation/internal/ledger"
	"github.com/segyhp/library-circulation/internal/session"
	"github.com/segyhp/library-circulation/pkg/client"
)

// ErrNoCopiesAvailable is a local hint; the catalog shows no copy left
var ErrNoCopiesAvailable = errors.New("no copies available")

// Sessions is the part of the session manager the service needs
type Sessions interface {
	Current() (*session.Session, bool)
}

type Service struct {
	api       *client.Client
	sessions  Sessions
	catalog   *catalog.Catalog
	estimator *ledger.Estimator

	guard   inflight.Guard
	refresh inflight.Coalescer
}

func NewService(api *client.Client, sessions Sessions, books *catalog.Catalog, estimator *ledger.Estimator) *Service {
	return &Service{
		api:       api,
		sessions:  sessions,
		catalog:   books,
		estimator: estimator,
	}
}

func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

func (s *Service) Estimator() *ledger.Estimator {
	return s.estimator
}

// Pending reports whether the action op on id is still running
func (s *Service) Pending(op string, id int64) bool {
	return s.guard.InFlight(inflight.Key(op, id))
}

type borrowOptions struct {
	force bool
}

type BorrowOption func(*borrowOptions)

// Force sends the borrow even when the catalog shows no copies
func Force() BorrowOption {
	return func(o *borrowOptions) {
		o.force = true
	}
}

// Borrow lends bookID to the logged-in member
func (s *Service) Borrow(ctx context.Context, bookID int64, opts ...BorrowOption) (*domain.Borrowing, error) {
	var o borrowOptions
	for _, opt := range opts {
		opt(&o)
	}

	if _, ok := s.sessions.Current(); !ok {
		return nil, client.ErrNotAuthenticated
	}
	if !o.force {
		if entry, known := s.catalog.Get(bookID); known && entry.AvailableCopies <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrNoCopiesAvailable, entry.Title)
		}
	}

	var borrowing *domain.Borrowing
	err := s.guard.Do(ctx, inflight.Key("borrow", bookID), func(ctx context.Context) error {
		b, err := s.api.Borrow(ctx, bookID)
		if err != nil {
			return err
		}
		borrowing = b
		s.catalog.ApplyDelta(bookID, -1)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return borrowing, nil
}

// ReturnResult is a closed borrowing and the fine the server charged
type ReturnResult struct {
	Borrowing *domain.Borrowing
	Fine      decimal.Decimal
}

// Late reports whether the server charged a fine
func (r ReturnResult) Late() bool {
	return r.Fine.IsPositive()
}

// Return closes borrowingID
func (s *Service) Return(ctx context.Context, borrowingID int64) (*ReturnResult, error) {
	if _, ok := s.sessions.Current(); !ok {
		return nil, client.ErrNotAuthenticated
	}

	var result *ReturnResult
	err := s.guard.Do(ctx, inflight.Key("return", borrowingID), func(ctx context.Context) error {
		b, err := s.api.Return(ctx, borrowingID)
		if err != nil {
			return err
		}

		fine := decimal.Zero
		if b.Fine.Valid {
			fine = b.Fine.Decimal
		}
		result = &ReturnResult{Borrowing: b, Fine: fine}
		s.catalog.ApplyDelta(b.Book.ID, 1)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Renew extends the due date of borrowingID
func (s *Service) Renew(ctx context.Context, borrowingID int64) (*ledger.Entry, error) {
	if _, ok := s.sessions.Current(); !ok {
		return nil, client.ErrNotAuthenticated
	}

	var renewed *domain.Borrowing
	err := s.guard.Do(ctx, inflight.Key("renew", borrowingID), func(ctx context.Context) error {
		b, err := s.api.Renew(ctx, borrowingID)
		if err != nil {
			return err
		}
		renewed = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	entry := s.estimator.Classify(*renewed)
	return &entry, nil
}

// shared detaches a coalesced fetch from the cancellation of whichever caller
// started it; the client timeout still bounds the request.
func shared(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

// Dashboard is the member's current loans as shown on the home screen
type Dashboard struct {
	Loans   []ledger.Entry
	Summary ledger.Summary
}

// Dashboard fetches the current borrowings and classifies them
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	borrowings, _, err := inflight.Do(&s.refresh, "current", func() ([]domain.Borrowing, error) {
		return s.api.CurrentBorrowings(shared(ctx))
	})
	if err != nil {
		return nil, err
	}

	loans := s.estimator.ClassifyAll(borrowings)
	return &Dashboard{Loans: loans, Summary: ledger.Summarize(loans)}, nil
}

// History fetches the returned borrowings with their server fines
func (s *Service) History(ctx context.Context) ([]ledger.Entry, error) {
	borrowings, _, err := inflight.Do(&s.refresh, "history", func() ([]domain.Borrowing, error) {
		return s.api.BorrowingHistory(shared(ctx))
	})
	if err != nil {
		return nil, err
	}
	return s.estimator.ClassifyAll(borrowings), nil
}

// OverdueReport is the staff view of every overdue borrowing
func (s *Service) OverdueReport(ctx context.Context) ([]ledger.Entry, ledger.Summary, error) {
	borrowings, err := s.api.OverdueReport(ctx)
	if err != nil {
		return nil, ledger.Summary{}, err
	}

	entries := s.estimator.ClassifyAll(borrowings)
	return entries, ledger.Summarize(entries), nil
}

// RefreshCatalog replaces the local catalog with the server listing
func (s *Service) RefreshCatalog(ctx context.Context) error {
	books, _, err := inflight.Do(&s.refresh, "books", func() ([]domain.Book, error) {
		return s.api.Books(shared(ctx))
	})
	if err != nil {
		return err
	}

	s.catalog.Replace(books)
	return nil
}

// RefreshWishlist loads the wishlist membership. It is a no-op when logged out.
func (s *Service) RefreshWishlist(ctx context.Context) ([]domain.WishlistItem, error) {
	if _, ok := s.sessions.Current(); !ok {
		return nil, nil
	}

	items, _, err := inflight.Do(&s.refresh, "wishlist", func() ([]domain.WishlistItem, error) {
		return s.api.Wishlist(shared(ctx))
	})
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.Book.ID)
	}
	s.catalog.SetWishlist(ids)
	return items, nil
}

// ToggleWishlist adds or removes bookID
func (s *Service) ToggleWishlist(ctx context.Context, bookID int64, on bool) error {
	if _, ok := s.sessions.Current(); !ok {
		return client.ErrNotAuthenticated
	}

	op := "wishlist-remove"
	if on {
		op = "wishlist-add"
	}

	return s.guard.Do(ctx, inflight.Key(op, bookID), func(ctx context.Context) error {
		var err error
		if on {
			_, err = s.api.AddToWishlist(ctx, bookID)
		} else {
			err = s.api.RemoveFromWishlist(ctx, bookID)
		}
		if err != nil {
			return err
		}
		s.catalog.MarkWishlisted(bookID, on)
		return nil
	})
}
