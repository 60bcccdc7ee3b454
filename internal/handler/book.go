package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/segyhp/library-circulation/internal/domain"
	"github.com/segyhp/library-circulation/internal/service"
	"github.com/segyhp/library-circulation/pkg/response"
)

type BookHandler struct {
	bookService *service.BookService
}

func NewBookHandler(bookService *service.BookService) *BookHandler {
	return &BookHandler{bookService: bookService}
}

// List handles GET /api/books
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.bookService.List)
}

// Get handles GET /api/books/{id}
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	book, err := h.bookService.Get(r.Context(), id)
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Success(w, book)
}

// Search handles POST /api/books/search. Query parameters are accepted when the body is empty.
func (h *BookHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req domain.BookSearchRequest
	if r.ContentLength != 0 {
		if !decodeAndValidate(w, r, &req) {
			return
		}
	} else {
		q := r.URL.Query()
		req.Keyword = q.Get("keyword")
		req.Title = q.Get("title")
		req.Author = q.Get("author")
		req.Genre = q.Get("genre")
		req.AvailableOnly, _ = strconv.ParseBool(q.Get("availableOnly"))
		req.DigitalOnly, _ = strconv.ParseBool(q.Get("digitalOnly"))
	}

	books, err := h.bookService.Search(r.Context(), req)
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Success(w, books)
}

// Available handles GET /api/books/available
func (h *BookHandler) Available(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.bookService.Available)
}

// Digital handles GET /api/books/digital
func (h *BookHandler) Digital(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.bookService.Digital)
}

// Popular handles GET /api/books/popular
func (h *BookHandler) Popular(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.bookService.Popular)
}

// Genres handles GET /api/books/genres
func (h *BookHandler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.bookService.Genres(r.Context())
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Success(w, genres)
}

func (h *BookHandler) respond(w http.ResponseWriter, r *http.Request, load func(ctx context.Context) ([]*domain.Book, error)) {
	books, err := load(r.Context())
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Success(w, books)
}
