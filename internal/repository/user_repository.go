package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/segyhp/library-circulation/internal/domain"
)

const userColumns = `id, username, password_hash, role, created_at`

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	return conn(ctx, r.db).QueryRowxContext(ctx, query,
		user.Username,
		user.PasswordHash,
		user.Role,
	).Scan(&user.ID, &user.CreatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	if err := conn(ctx, r.db).GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := conn(ctx, r.db).GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE username = $1`, username); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := conn(ctx, r.db).GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
	return exists, err
}

func (r *userRepository) ExistsByRole(ctx context.Context, role string) (bool, error) {
	var exists bool
	err := conn(ctx, r.db).GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE role = $1)`, role)
	return exists, err
}

func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	if err := conn(ctx, r.db).SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY username`); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) UpdateRole(ctx context.Context, id int64, role string) error {
	return execAffecting(ctx, conn(ctx, r.db), `UPDATE users SET role = $2 WHERE id = $1`, id, role)
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, conn(ctx, r.db), `DELETE FROM users WHERE id = $1`, id)
}
