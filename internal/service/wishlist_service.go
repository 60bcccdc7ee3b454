package service

import (
	"context"

	"github.com/segyhp/library-circulation/internal/domain"
	"github.com/segyhp/library-circulation/internal/repository"
	customError "github.com/segyhp/library-circulation/pkg/errors"
)

type WishlistService struct {
	WishlistRepo repository.WishlistRepository
	BookRepo     repository.BookRepository
}

func NewWishlistService(wishlistRepo repository.WishlistRepository, bookRepo repository.BookRepository) *WishlistService {
	return &WishlistService{
		WishlistRepo: wishlistRepo,
		BookRepo:     bookRepo,
	}
}

func (s *WishlistService) List(ctx context.Context, memberID int64) ([]*domain.WishlistItem, error) {
	items, err := s.WishlistRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return items, nil
}

func (s *WishlistService) Add(ctx context.Context, memberID, bookID int64) (*domain.WishlistItem, error) {
	if _, err := s.BookRepo.GetByID(ctx, bookID); err != nil {
		return nil, lookupError(err, customError.WrapBookNotFound(bookID))
	}

	exists, err := s.WishlistRepo.Exists(ctx, memberID, bookID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if exists {
		return nil, customError.WrapAlreadyInWishlist(bookID)
	}

	item, err := s.WishlistRepo.Add(ctx, memberID, bookID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return item, nil
}

func (s *WishlistService) Remove(ctx context.Context, memberID, bookID int64) error {
	if err := s.WishlistRepo.Remove(ctx, memberID, bookID); err != nil {
		return lookupError(err, customError.WrapNotInWishlist(bookID))
	}
	return nil
}
