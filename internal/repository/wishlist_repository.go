package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/segyhp/library-circulation/internal/domain"
)

const wishlistSelect = `
	SELECT
		w.id, w.member_id, w.created_at,
		b.id AS "book.id", b.title AS "book.title", b.author AS "book.author", b.genre AS "book.genre",
		b.available_copies AS "book.available_copies", b.total_copies AS "book.total_copies",
		b.has_digital_copy AS "book.has_digital_copy", b.created_at AS "book.created_at"
	FROM wishlist w
	JOIN books b ON b.id = w.book_id
`

type wishlistRepository struct {
	db *sqlx.DB
}

func NewWishlistRepository(db *sqlx.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) ListByMember(ctx context.Context, memberID int64) ([]*domain.WishlistItem, error) {
	var items []*domain.WishlistItem
	if err := conn(ctx, r.db).SelectContext(ctx, &items, wishlistSelect+` WHERE w.member_id = $1 ORDER BY w.created_at DESC, w.id DESC`, memberID); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *wishlistRepository) Exists(ctx context.Context, memberID, bookID int64) (bool, error) {
	var exists bool
	err := conn(ctx, r.db).GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM wishlist WHERE member_id = $1 AND book_id = $2)`, memberID, bookID)
	return exists, err
}

func (r *wishlistRepository) Add(ctx context.Context, memberID, bookID int64) (*domain.WishlistItem, error) {
	var id int64
	err := conn(ctx, r.db).QueryRowxContext(ctx,
		`INSERT INTO wishlist (member_id, book_id) VALUES ($1, $2) RETURNING id`,
		memberID, bookID,
	).Scan(&id)
	if err != nil {
		return nil, err
	}

	var item domain.WishlistItem
	if err := conn(ctx, r.db).GetContext(ctx, &item, wishlistSelect+` WHERE w.id = $1`, id); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *wishlistRepository) Remove(ctx context.Context, memberID, bookID int64) error {
	return execAffecting(ctx, conn(ctx, r.db), `DELETE FROM wishlist WHERE member_id = $1 AND book_id = $2`, memberID, bookID)
}
