package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/segyhp/library-circulation/internal/domain"
)

const memberSelect = `
	SELECT m.id, m.user_id, COALESCE(u.username, '') AS username, m.full_name, m.email, m.created_at
	FROM members m
	LEFT JOIN users u ON u.id = m.user_id
`

type memberRepository struct {
	db *sqlx.DB
}

func NewMemberRepository(db *sqlx.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) error {
	query := `
		INSERT INTO members (user_id, full_name, email)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	return conn(ctx, r.db).QueryRowxContext(ctx, query,
		member.UserID,
		member.FullName,
		member.Email,
	).Scan(&member.ID, &member.CreatedAt)
}

func (r *memberRepository) GetByID(ctx context.Context, id int64) (*domain.Member, error) {
	var member domain.Member
	if err := conn(ctx, r.db).GetContext(ctx, &member, memberSelect+` WHERE m.id = $1`, id); err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Member, error) {
	var member domain.Member
	if err := conn(ctx, r.db).GetContext(ctx, &member, memberSelect+` WHERE m.user_id = $1`, userID); err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := conn(ctx, r.db).GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM members WHERE LOWER(email) = LOWER($1))`, email)
	return exists, err
}

func (r *memberRepository) List(ctx context.Context) ([]*domain.Member, error) {
	var members []*domain.Member
	if err := conn(ctx, r.db).SelectContext(ctx, &members, memberSelect+` ORDER BY m.full_name, m.id`); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *memberRepository) Update(ctx context.Context, member *domain.Member) error {
	return execAffecting(ctx, conn(ctx, r.db),
		`UPDATE members SET full_name = $2, email = $3 WHERE id = $1`,
		member.ID, member.FullName, member.Email,
	)
}

func (r *memberRepository) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, conn(ctx, r.db), `DELETE FROM members WHERE id = $1`, id)
}

func (r *memberRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := conn(ctx, r.db).GetContext(ctx, &n, `SELECT COUNT(*) FROM members`)
	return n, err
}
