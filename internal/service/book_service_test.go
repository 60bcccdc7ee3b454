package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/library-circulation/internal/domain"
	"github.com/segyhp/library-circulation/internal/mocks"
	customError "github.com/segyhp/library-circulation/pkg/errors"
)

func intPtr(v int) *int { return &v }

func TestBookService_ListUsesCache(t *testing.T) {
	bookRepo := &mocks.MockBookRepository{}
	cache := &mocks.MockCache{}
	svc := NewBookService(bookRepo, &mocks.MockBorrowingRepository{}, cache, time.Minute)

	books := []*domain.Book{{ID: 1, Title: "Always Coming Home"}}

	cache.On("Get", mock.Anything, cacheKeyBooks, mock.Anything).Return(false, nil).Once()
	bookRepo.On("List", mock.Anything).Return(books, nil).Once()
	cache.On("Set", mock.Anything, cacheKeyBooks, books, time.Minute).Return(nil).Once()

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, books, got)

	cache.On("Get", mock.Anything, cacheKeyBooks, mock.Anything).Run(func(args mock.Arguments) {
		*args.Get(2).(*[]*domain.Book) = books
	}).Return(true, nil).Once()

	got, err = svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, books, got)

	bookRepo.AssertNumberOfCalls(t, "List", 1)
	cache.AssertExpectations(t)
}

func TestBookService_CacheFailureFallsThrough(t *testing.T) {
	bookRepo := &mocks.MockBookRepository{}
	cache := &mocks.MockCache{}
	svc := NewBookService(bookRepo, &mocks.MockBorrowingRepository{}, cache, time.Minute)

	cache.On("Get", mock.Anything, cacheKeyGenres, mock.Anything).Return(false, errors.New("redis down"))
	bookRepo.On("ListGenres", mock.Anything).Return([]string{"Fantasy"}, nil)
	cache.On("Set", mock.Anything, cacheKeyGenres, mock.Anything, time.Minute).Return(errors.New("redis down"))

	genres, err := svc.Genres(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"Fantasy"}, genres)
}

func TestBookService_Create(t *testing.T) {
	bookRepo := &mocks.MockBookRepository{}
	cache := &mocks.MockCache{}
	svc := NewBookService(bookRepo, &mocks.MockBorrowingRepository{}, cache, time.Minute)

	bookRepo.On("Create", mock.Anything, mock.MatchedBy(func(b *domain.Book) bool {
		return b.Title == "Lathe of Heaven" && b.TotalCopies == 3 && b.AvailableCopies == 3
	})).Return(nil)
	cache.On("Delete", mock.Anything, mock.Anything).Return(nil)

	book, err := svc.Create(context.Background(), &domain.BookRequest{Title: " Lathe of Heaven ", Author: "Le Guin", TotalCopies: intPtr(3)})

	require.NoError(t, err)
	assert.Equal(t, 3, book.AvailableCopies)
	cache.AssertCalled(t, "Delete", mock.Anything, []string{cacheKeyBooks, cacheKeyGenres, cacheKeyPopular, cacheKeyDashboard})
}

func TestBookService_UpdateCopies(t *testing.T) {
	tests := []struct {
		name          string
		newTotal      int
		wantAvailable int
		wantError     error
	}{
		{"grow", 6, 4, nil},
		{"shrink to copies on loan", 2, 0, nil},
		{"below copies on loan", 1, 0, customError.ErrCopiesOnLoan},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookRepo := &mocks.MockBookRepository{}
			svc := NewBookService(bookRepo, &mocks.MockBorrowingRepository{}, NopCache{}, time.Minute)

			// two of four copies are on loan
			bookRepo.On("GetByID", mock.Anything, int64(1)).Return(&domain.Book{ID: 1, TotalCopies: 4, AvailableCopies: 2}, nil)
			bookRepo.On("Update", mock.Anything, mock.Anything).Return(nil)

			book, err := svc.Update(context.Background(), 1, &domain.BookRequest{Title: "T", Author: "A", TotalCopies: intPtr(tt.newTotal)})

			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				bookRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.newTotal, book.TotalCopies)
			assert.Equal(t, tt.wantAvailable, book.AvailableCopies)
		})
	}
}

func TestBookService_Delete(t *testing.T) {
	t.Run("refuses borrowed books", func(t *testing.T) {
		bookRepo := &mocks.MockBookRepository{}
		borrowingRepo := &mocks.MockBorrowingRepository{}
		svc := NewBookService(bookRepo, borrowingRepo, NopCache{}, time.Minute)

		borrowingRepo.On("ListByBook", mock.Anything, int64(1)).Return([]*domain.Borrowing{{ID: 3}}, nil)

		err := svc.Delete(context.Background(), 1)

		assert.ErrorIs(t, err, customError.ErrBookHasBorrowings)
		bookRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		bookRepo := &mocks.MockBookRepository{}
		borrowingRepo := &mocks.MockBorrowingRepository{}
		svc := NewBookService(bookRepo, borrowingRepo, NopCache{}, time.Minute)

		borrowingRepo.On("ListByBook", mock.Anything, int64(1)).Return([]*domain.Borrowing{}, nil)
		bookRepo.On("Delete", mock.Anything, int64(1)).Return(sql.ErrNoRows)

		err := svc.Delete(context.Background(), 1)

		assert.ErrorIs(t, err, customError.ErrBookNotFound)
	})
}
