package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/segyhp/library-circulation/internal/domain"
	"github.com/segyhp/library-circulation/internal/repository"
	customError "github.com/segyhp/library-circulation/pkg/errors"
)

type MemberService struct {
	MemberRepo    repository.MemberRepository
	UserRepo      repository.UserRepository
	BorrowingRepo repository.BorrowingRepository
	Tx            repository.Transactor
	auth          *AuthService
	cache         Cache
}

func NewMemberService(
	memberRepo repository.MemberRepository,
	userRepo repository.UserRepository,
	borrowingRepo repository.BorrowingRepository,
	tx repository.Transactor,
	authService *AuthService,
	cache Cache,
) *MemberService {
	return &MemberService{
		MemberRepo:    memberRepo,
		UserRepo:      userRepo,
		BorrowingRepo: borrowingRepo,
		Tx:            tx,
		auth:          authService,
		cache:         cache,
	}
}

func (s *MemberService) List(ctx context.Context) ([]*domain.Member, error) {
	members, err := s.MemberRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return members, nil
}

func (s *MemberService) Get(ctx context.Context, id int64) (*domain.Member, error) {
	member, err := s.MemberRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, customError.WrapMemberNotFound(id))
	}
	return member, nil
}

// Create registers a login account and member profile on behalf of a member
func (s *MemberService) Create(ctx context.Context, request *domain.CreateMemberRequest) (*domain.Member, error) {
	member, err := s.auth.register(ctx, request.Username, request.Password, request.FullName, request.Email)
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.cache, cacheKeyDashboard)
	return member, nil
}

func (s *MemberService) Update(ctx context.Context, id int64, request *domain.UpdateMemberRequest) (*domain.Member, error) {
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	email := strings.TrimSpace(request.Email)
	if !strings.EqualFold(email, member.Email) {
		inUse, err := s.MemberRepo.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		if inUse {
			return nil, customError.WrapEmailInUse(email)
		}
	}

	member.FullName = strings.TrimSpace(request.FullName)
	member.Email = email

	if err := s.MemberRepo.Update(ctx, member); err != nil {
		return nil, lookupError(err, customError.WrapMemberNotFound(id))
	}

	return member, nil
}

// Delete removes a member without active borrowings together with its non-admin login
func (s *MemberService) Delete(ctx context.Context, id int64) error {
	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		member, err := s.Get(ctx, id)
		if err != nil {
			return err
		}

		active, err := s.BorrowingRepo.CountActiveByMember(ctx, id)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		if active > 0 {
			return customError.WrapMemberHasBorrowings(id)
		}

		if err := s.MemberRepo.Delete(ctx, id); err != nil {
			return lookupError(err, customError.WrapMemberNotFound(id))
		}

		if member.UserID == nil {
			return nil
		}

		user, err := s.UserRepo.GetByID(ctx, *member.UserID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		if user.IsAdmin() {
			return nil
		}

		if err := s.UserRepo.Delete(ctx, user.ID); err != nil && !errors.Is(err, sql.ErrNoRows) {
			return customError.WrapDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	invalidate(ctx, s.cache, cacheKeyDashboard)
	slog.InfoContext(ctx, "member deleted", "member_id", id)

	return nil
}
