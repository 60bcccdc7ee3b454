package client

import (
	"context"
	"fmt"

	"github.com/segyhp/library-circulation/internal/domain"
)

func (c *Client) Books(ctx context.Context) ([]domain.Book, error) {
	return c.bookList(ctx, "/api/books")
}

func (c *Client) Book(ctx context.Context, id int64) (*domain.Book, error) {
	var out domain.Book
	if err := c.get(ctx, fmt.Sprintf("/api/books/%d", id), public, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchBooks runs the server-side catalog search
func (c *Client) SearchBooks(ctx context.Context, request domain.BookSearchRequest) ([]domain.Book, error) {
	var out []domain.Book
	if err := c.post(ctx, "/api/books/search", public, request, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AvailableBooks(ctx context.Context) ([]domain.Book, error) {
	return c.bookList(ctx, "/api/books/available")
}

// DigitalBooksCatalog lists the books that have at least one digital copy
func (c *Client) DigitalBooksCatalog(ctx context.Context) ([]domain.Book, error) {
	return c.bookList(ctx, "/api/books/digital")
}

func (c *Client) PopularBooks(ctx context.Context) ([]domain.Book, error) {
	return c.bookList(ctx, "/api/books/popular")
}

func (c *Client) Genres(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.get(ctx, "/api/books/genres", public, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) bookList(ctx context.Context, path string) ([]domain.Book, error) {
	var out []domain.Book
	if err := c.get(ctx, path, public, &out); err != nil {
		return nil, err
	}
	return out, nil
}
