package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/segyhp/library-circulation/internal/domain"
	"github.com/segyhp/library-circulation/internal/repository"
	customError "github.com/segyhp/library-circulation/pkg/errors"
)

const popularBooksLimit = 10

type BookService struct {
	BookRepo      repository.BookRepository
	BorrowingRepo repository.BorrowingRepository
	cache         Cache
	cacheTTL      time.Duration
}

func NewBookService(
	bookRepo repository.BookRepository,
	borrowingRepo repository.BorrowingRepository,
	cache Cache,
	cacheTTL time.Duration,
) *BookService {
	return &BookService{
		BookRepo:      bookRepo,
		BorrowingRepo: borrowingRepo,
		cache:         cache,
		cacheTTL:      cacheTTL,
	}
}

// List returns the whole catalog, served from the cache when possible
func (s *BookService) List(ctx context.Context) ([]*domain.Book, error) {
	return cached(ctx, s.cache, cacheKeyBooks, s.cacheTTL, func() ([]*domain.Book, error) {
		return s.BookRepo.List(ctx)
	})
}

func (s *BookService) Get(ctx context.Context, id int64) (*domain.Book, error) {
	book, err := s.BookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, customError.WrapBookNotFound(id))
	}
	return book, nil
}

func (s *BookService) Search(ctx context.Context, request domain.BookSearchRequest) ([]*domain.Book, error) {
	books, err := s.BookRepo.Search(ctx, request)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return books, nil
}

func (s *BookService) Available(ctx context.Context) ([]*domain.Book, error) {
	return s.Search(ctx, domain.BookSearchRequest{AvailableOnly: true})
}

func (s *BookService) Digital(ctx context.Context) ([]*domain.Book, error) {
	return s.Search(ctx, domain.BookSearchRequest{DigitalOnly: true})
}

// Popular returns the most borrowed books
func (s *BookService) Popular(ctx context.Context) ([]*domain.Book, error) {
	return cached(ctx, s.cache, cacheKeyPopular, s.cacheTTL, func() ([]*domain.Book, error) {
		return s.BookRepo.MostBorrowed(ctx, popularBooksLimit)
	})
}

func (s *BookService) Genres(ctx context.Context) ([]string, error) {
	return cached(ctx, s.cache, cacheKeyGenres, s.cacheTTL, func() ([]string, error) {
		return s.BookRepo.ListGenres(ctx)
	})
}

// Create adds a book with every copy available
func (s *BookService) Create(ctx context.Context, request *domain.BookRequest) (*domain.Book, error) {
	book := &domain.Book{
		Title:  strings.TrimSpace(request.Title),
		Author: strings.TrimSpace(request.Author),
		Genre:  strings.TrimSpace(request.Genre),
	}
	if request.TotalCopies != nil {
		book.TotalCopies = *request.TotalCopies
	}
	if request.HasDigitalCopy != nil {
		book.HasDigitalCopy = *request.HasDigitalCopy
	}
	book.AvailableCopies = book.TotalCopies

	if err := s.BookRepo.Create(ctx, book); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidate(ctx)
	slog.InfoContext(ctx, "book created", "book_id", book.ID, "title", book.Title)

	return book, nil
}

// Update edits a book. A change of total copies moves available copies by the same amount.
func (s *BookService) Update(ctx context.Context, id int64, request *domain.BookRequest) (*domain.Book, error) {
	book, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	book.Title = strings.TrimSpace(request.Title)
	book.Author = strings.TrimSpace(request.Author)
	book.Genre = strings.TrimSpace(request.Genre)

	if request.TotalCopies != nil {
		onLoan := book.TotalCopies - book.AvailableCopies
		if *request.TotalCopies < onLoan {
			return nil, customError.WrapCopiesOnLoan(id, onLoan)
		}
		book.AvailableCopies += *request.TotalCopies - book.TotalCopies
		book.TotalCopies = *request.TotalCopies
	}
	if request.HasDigitalCopy != nil {
		book.HasDigitalCopy = *request.HasDigitalCopy
	}

	if err := s.BookRepo.Update(ctx, book); err != nil {
		return nil, lookupError(err, customError.WrapBookNotFound(id))
	}

	s.invalidate(ctx)

	return book, nil
}

// Delete removes a book that was never borrowed
func (s *BookService) Delete(ctx context.Context, id int64) error {
	borrowings, err := s.BorrowingRepo.ListByBook(ctx, id)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	if len(borrowings) > 0 {
		return customError.WrapBookHasBorrowings(id)
	}

	if err := s.BookRepo.Delete(ctx, id); err != nil {
		return lookupError(err, customError.WrapBookNotFound(id))
	}

	s.invalidate(ctx)
	slog.InfoContext(ctx, "book deleted", "book_id", id)

	return nil
}

func (s *BookService) invalidate(ctx context.Context) {
	invalidate(ctx, s.cache, cacheKeyBooks, cacheKeyGenres, cacheKeyPopular, cacheKeyDashboard)
}

// cached reads key from the cache, falling back to load and storing its result.
// Cache failures are logged and never fail the request.
func cached[T any](ctx context.Context, cache Cache, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var value T

	hit, err := cache.Get(ctx, key, &value)
	if err != nil {
		slog.WarnContext(ctx, "cache read failed", "key", key, "error", customError.WrapCacheError(err))
	}
	if hit {
		return value, nil
	}

	value, err = load()
	if err != nil {
		var zero T
		return zero, customError.WrapDatabaseError(err)
	}

	if err := cache.Set(ctx, key, value, ttl); err != nil {
		slog.WarnContext(ctx, "cache write failed", "key", key, "error", customError.WrapCacheError(err))
	}

	return value, nil
}

func invalidate(ctx context.Context, cache Cache, keys ...string) {
	if err := cache.Delete(ctx, keys...); err != nil {
		slog.WarnContext(ctx, "cache invalidation failed", "keys", keys, "error", customError.WrapCacheError(err))
	}
}
