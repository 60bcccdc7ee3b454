package client

import (
	"context"
	"fmt"

	"github.com/segyhp/library-circulation/internal/domain"
)

func (c *Client) AdminBooks(ctx context.Context) ([]domain.Book, error) {
	var out []domain.Book
	if err := c.get(ctx, "/api/admin/books", authenticated, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateBook(ctx context.Context, request domain.BookRequest) (*domain.Book, error) {
	var out domain.Book
	if err := c.post(ctx, "/api/admin/books", authenticated, request, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateBook(ctx context.Context, id int64, request domain.BookRequest) (*domain.Book, error) {
	var out domain.Book
	if err := c.put(ctx, fmt.Sprintf("/api/admin/books/%d", id), authenticated, request, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteBook(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/admin/books/%d", id), authenticated)
}

func (c *Client) Members(ctx context.Context) ([]domain.Member, error) {
	var out []domain.Member
	if err := c.get(ctx, "/api/admin/members", authenticated, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Member(ctx context.Context, id int64) (*domain.Member, error) {
	var out domain.Member
	if err := c.get(ctx, fmt.Sprintf("/api/admin/members/%d", id), authenticated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateMember(ctx context.Context, request domain.CreateMemberRequest) (*domain.Member, error) {
	var out domain.Member
	if err := c.post(ctx, "/api/admin/members", authenticated, request, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateMember(ctx context.Context, id int64, request domain.UpdateMemberRequest) (*domain.Member, error) {
	var out domain.Member
	if err := c.put(ctx, fmt.Sprintf("/api/admin/members/%d", id), authenticated, request, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteMember(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/admin/members/%d", id), authenticated)
}

func (c *Client) Users(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	if err := c.get(ctx, "/api/admin/users", authenticated, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateAdmin(ctx context.Context, request domain.CreateAdminRequest) (*domain.User, error) {
	var out domain.User
	if err := c.post(ctx, "/api/admin/users/admin", authenticated, request, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUserRole(ctx context.Context, id int64, role string) (*domain.User, error) {
	var out domain.User
	if err := c.put(ctx, fmt.Sprintf("/api/admin/users/%d/role", id), authenticated, domain.UpdateRoleRequest{Role: role}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AllBorrowings lists every borrowing in the system
func (c *Client) AllBorrowings(ctx context.Context) ([]domain.Borrowing, error) {
	return c.borrowingList(ctx, "/api/admin/borrowings")
}

// OverdueReport backs the admin overdue-books report
func (c *Client) OverdueReport(ctx context.Context) ([]domain.Borrowing, error) {
	return c.borrowingList(ctx, "/api/admin/stats/overdue-books")
}

func (c *Client) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	var out domain.DashboardStats
	if err := c.get(ctx, "/api/admin/stats/dashboard", authenticated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
