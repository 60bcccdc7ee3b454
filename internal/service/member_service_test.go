package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/library-circulation/internal/domain"
	"github.com/segyhp/library-circulation/internal/mocks"
	customError "github.com/segyhp/library-circulation/pkg/errors"
)

func newMemberService() (*MemberService, *mocks.MockMemberRepository, *mocks.MockUserRepository, *mocks.MockBorrowingRepository) {
	authService, userRepo, memberRepo := newAuthService()
	borrowingRepo := &mocks.MockBorrowingRepository{}

	svc := NewMemberService(memberRepo, userRepo, borrowingRepo, mocks.Transactor{}, authService, NopCache{})
	return svc, memberRepo, userRepo, borrowingRepo
}

func int64Ptr(v int64) *int64 { return &v }

func TestMemberService_Delete(t *testing.T) {
	t.Run("refuses members with active borrowings", func(t *testing.T) {
		svc, memberRepo, _, borrowingRepo := newMemberService()
		memberRepo.On("GetByID", mock.Anything, int64(4)).Return(&domain.Member{ID: 4}, nil)
		borrowingRepo.On("CountActiveByMember", mock.Anything, int64(4)).Return(int64(1), nil)

		err := svc.Delete(context.Background(), 4)

		assert.ErrorIs(t, err, customError.ErrMemberHasBorrowings)
		memberRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("removes the login of regular users", func(t *testing.T) {
		svc, memberRepo, userRepo, borrowingRepo := newMemberService()
		memberRepo.On("GetByID", mock.Anything, int64(4)).Return(&domain.Member{ID: 4, UserID: int64Ptr(9)}, nil)
		borrowingRepo.On("CountActiveByMember", mock.Anything, int64(4)).Return(int64(0), nil)
		memberRepo.On("Delete", mock.Anything, int64(4)).Return(nil)
		userRepo.On("GetByID", mock.Anything, int64(9)).Return(&domain.User{ID: 9, Role: domain.RoleUser}, nil)
		userRepo.On("Delete", mock.Anything, int64(9)).Return(nil)

		require.NoError(t, svc.Delete(context.Background(), 4))
		userRepo.AssertExpectations(t)
	})

	t.Run("keeps admin logins", func(t *testing.T) {
		svc, memberRepo, userRepo, borrowingRepo := newMemberService()
		memberRepo.On("GetByID", mock.Anything, int64(4)).Return(&domain.Member{ID: 4, UserID: int64Ptr(1)}, nil)
		borrowingRepo.On("CountActiveByMember", mock.Anything, int64(4)).Return(int64(0), nil)
		memberRepo.On("Delete", mock.Anything, int64(4)).Return(nil)
		userRepo.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, Role: domain.RoleAdmin}, nil)

		require.NoError(t, svc.Delete(context.Background(), 4))
		userRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestMemberService_UpdateEmailInUse(t *testing.T) {
	svc, memberRepo, _, _ := newMemberService()
	memberRepo.On("GetByID", mock.Anything, int64(4)).Return(&domain.Member{ID: 4, Email: "old@example.org"}, nil)
	memberRepo.On("ExistsByEmail", mock.Anything, "new@example.org").Return(true, nil)

	_, err := svc.Update(context.Background(), 4, &domain.UpdateMemberRequest{FullName: "X", Email: "new@example.org"})

	assert.ErrorIs(t, err, customError.ErrEmailInUse)
	memberRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
