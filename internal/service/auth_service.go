package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/segyhp/library-circulation/internal/auth"
	"github.com/segyhp/library-circulation/internal/domain"
	"github.com/segyhp/library-circulation/internal/repository"
	customError "github.com/segyhp/library-circulation/pkg/errors"
)

type AuthService struct {
	UserRepo   repository.UserRepository
	MemberRepo repository.MemberRepository
	Tx         repository.Transactor
	tokens     *auth.TokenService
	hashCost   int
}

func NewAuthService(
	userRepo repository.UserRepository,
	memberRepo repository.MemberRepository,
	tx repository.Transactor,
	tokens *auth.TokenService,
) *AuthService {
	return &AuthService{
		UserRepo:   userRepo,
		MemberRepo: memberRepo,
		Tx:         tx,
		tokens:     tokens,
		hashCost:   bcrypt.DefaultCost,
	}
}

// Signin checks the credentials and issues an access token
func (s *AuthService) Signin(ctx context.Context, request *domain.SigninRequest) (*domain.JWTResponse, error) {
	user, err := s.UserRepo.GetByUsername(ctx, request.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapInvalidCredentials()
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)); err != nil {
		return nil, customError.WrapInvalidCredentials()
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	resp := &domain.JWTResponse{
		Token:    token,
		Type:     "Bearer",
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	}

	if !user.IsAdmin() {
		member, err := s.MemberRepo.GetByUserID(ctx, user.ID)
		switch {
		case err == nil:
			resp.MemberID = &member.ID
		case !errors.Is(err, sql.ErrNoRows):
			return nil, customError.WrapDatabaseError(err)
		}
	}

	slog.InfoContext(ctx, "user signed in", "user_id", user.ID, "role", user.Role)

	return resp, nil
}

// Signup registers a USER account together with its member profile
func (s *AuthService) Signup(ctx context.Context, request *domain.SignupRequest) (*domain.Member, error) {
	return s.register(ctx, request.Username, request.Password, request.FullName, request.Email)
}

// Me returns the caller's account and, for regular users, the member profile
func (s *AuthService) Me(ctx context.Context, userID int64) (*domain.CurrentUser, error) {
	user, err := s.UserRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err, customError.WrapUserNotFound(userID))
	}

	current := &domain.CurrentUser{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	}

	member, err := s.MemberRepo.GetByUserID(ctx, user.ID)
	switch {
	case err == nil:
		current.Member = member
	case !errors.Is(err, sql.ErrNoRows):
		return nil, customError.WrapDatabaseError(err)
	}

	return current, nil
}

// CurrentMember resolves the member profile that borrows on behalf of a user
func (s *AuthService) CurrentMember(ctx context.Context, claims *auth.Claims) (*domain.Member, error) {
	member, err := s.MemberRepo.GetByUserID(ctx, claims.UserID())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapNoMemberProfile(claims.Username)
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return member, nil
}

// SetupAdmin bootstraps the first administrator. It fails once any admin exists.
func (s *AuthService) SetupAdmin(ctx context.Context, request *domain.AdminSetupRequest) error {
	return s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := s.UserRepo.ExistsByRole(ctx, domain.RoleAdmin)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		if exists {
			return customError.WrapAdminExists()
		}

		user, err := s.createUser(ctx, request.Username, request.Password, domain.RoleAdmin)
		if err != nil {
			return err
		}

		member := &domain.Member{UserID: &user.ID, FullName: strings.TrimSpace(request.FullName), Email: strings.TrimSpace(request.Email)}
		if err := s.MemberRepo.Create(ctx, member); err != nil {
			return customError.WrapDatabaseError(err)
		}

		slog.InfoContext(ctx, "initial admin created", "user_id", user.ID)
		return nil
	})
}

// CreateAdmin adds another administrator account
func (s *AuthService) CreateAdmin(ctx context.Context, request *domain.CreateAdminRequest) (*domain.User, error) {
	return s.createUser(ctx, request.Username, request.Password, domain.RoleAdmin)
}

func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.UserRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return users, nil
}

func (s *AuthService) UpdateRole(ctx context.Context, userID int64, role string) (*domain.User, error) {
	role = strings.ToUpper(role)

	if err := s.UserRepo.UpdateRole(ctx, userID, role); err != nil {
		return nil, lookupError(err, customError.WrapUserNotFound(userID))
	}

	user, err := s.UserRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err, customError.WrapUserNotFound(userID))
	}
	return user, nil
}

// register creates a USER account and its member profile in one transaction
func (s *AuthService) register(ctx context.Context, username, password, fullName, email string) (*domain.Member, error) {
	email = strings.TrimSpace(email)
	var member *domain.Member

	err := s.Tx.WithinTx(ctx, func(ctx context.Context) error {
		inUse, err := s.MemberRepo.ExistsByEmail(ctx, email)
		if err != nil {
			return customError.WrapDatabaseError(err)
		}
		if inUse {
			return customError.WrapEmailInUse(email)
		}

		user, err := s.createUser(ctx, username, password, domain.RoleUser)
		if err != nil {
			return err
		}

		member = &domain.Member{
			UserID:   &user.ID,
			Username: user.Username,
			FullName: strings.TrimSpace(fullName),
			Email:    email,
		}
		if err := s.MemberRepo.Create(ctx, member); err != nil {
			return customError.WrapDatabaseError(err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "member registered", "member_id", member.ID, "username", member.Username)

	return member, nil
}

func (s *AuthService) createUser(ctx context.Context, username, password, role string) (*domain.User, error) {
	username = strings.TrimSpace(username)

	taken, err := s.UserRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if taken {
		return nil, customError.WrapUsernameTaken(username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return user, nil
}

// lookupError turns a missing row into the given not-found error
func lookupError(err error, notFound *customError.BusinessError) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return customError.WrapDatabaseError(err)
}
