package client

import (
	"context"
	"fmt"

	"github.com/segyhp/library-circulation/internal/domain"
)

// Borrow lends a copy of the book to the logged-in member
func (c *Client) Borrow(ctx context.Context, bookID int64) (*domain.Borrowing, error) {
	return c.borrowingCall(ctx, c.post, fmt.Sprintf("/api/borrowings/borrow/%d", bookID))
}

// Return closes a borrowing. The returned record carries the authoritative fine.
func (c *Client) Return(ctx context.Context, borrowingID int64) (*domain.Borrowing, error) {
	return c.borrowingCall(ctx, c.put, fmt.Sprintf("/api/borrowings/return/%d", borrowingID))
}

func (c *Client) Renew(ctx context.Context, borrowingID int64) (*domain.Borrowing, error) {
	return c.borrowingCall(ctx, c.put, fmt.Sprintf("/api/borrowings/renew/%d", borrowingID))
}

func (c *Client) Borrowing(ctx context.Context, id int64) (*domain.Borrowing, error) {
	var out domain.Borrowing
	if err := c.get(ctx, fmt.Sprintf("/api/borrowings/%d", id), authenticated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentBorrowings lists the caller's unreturned borrowings
func (c *Client) CurrentBorrowings(ctx context.Context) ([]domain.Borrowing, error) {
	return c.borrowingList(ctx, "/api/borrowings/current")
}

// BorrowingHistory lists the caller's returned borrowings
func (c *Client) BorrowingHistory(ctx context.Context) ([]domain.Borrowing, error) {
	return c.borrowingList(ctx, "/api/borrowings/history")
}

func (c *Client) MemberBorrowings(ctx context.Context, memberID int64) ([]domain.Borrowing, error) {
	return c.borrowingList(ctx, fmt.Sprintf("/api/borrowings/member/%d", memberID))
}

func (c *Client) MemberTotalFines(ctx context.Context, memberID int64) (*domain.TotalFinesResponse, error) {
	var out domain.TotalFinesResponse
	if err := c.get(ctx, fmt.Sprintf("/api/borrowings/member/%d/total-fines", memberID), authenticated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CalculateFines asks the server to accrue fines now and returns how many records changed
func (c *Client) CalculateFines(ctx context.Context) (int, error) {
	var out struct {
		Updated int `json:"updated"`
	}
	if err := c.post(ctx, "/api/borrowings/calculate-fines", authenticated, nil, &out); err != nil {
		return 0, err
	}
	return out.Updated, nil
}

func (c *Client) Wishlist(ctx context.Context) ([]domain.WishlistItem, error) {
	var out []domain.WishlistItem
	if err := c.get(ctx, "/api/wishlist", authenticated, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddToWishlist(ctx context.Context, bookID int64) (*domain.WishlistItem, error) {
	var out domain.WishlistItem
	if err := c.post(ctx, fmt.Sprintf("/api/wishlist/%d", bookID), authenticated, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveFromWishlist(ctx context.Context, bookID int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/wishlist/%d", bookID), authenticated)
}

type sendFunc func(ctx context.Context, path string, acc access, in, out interface{}) error

func (c *Client) borrowingCall(ctx context.Context, send sendFunc, path string) (*domain.Borrowing, error) {
	var out domain.Borrowing
	if err := send(ctx, path, authenticated, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) borrowingList(ctx context.Context, path string) ([]domain.Borrowing, error) {
	var out []domain.Borrowing
	if err := c.get(ctx, path, authenticated, &out); err != nil {
		return nil, err
	}
	return out, nil
}
