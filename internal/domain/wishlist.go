package domain

import "time"

// WishlistItem is a book a member saved for later. It is independent of borrowing state.
type WishlistItem struct {
	ID        int64     `json:"id" db:"id"`
	MemberID  int64     `json:"memberId" db:"member_id"`
	Book      Book      `json:"book" db:"book"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
