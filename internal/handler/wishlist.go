package handler

import (
	"net/http"

	"github.com/segyhp/library-circulation/internal/service"
	"github.com/segyhp/library-circulation/pkg/response"
)

type WishlistHandler struct {
	wishlistService *service.WishlistService
	authService     *service.AuthService
}

func NewWishlistHandler(wishlistService *service.WishlistService, authService *service.AuthService) *WishlistHandler {
	return &WishlistHandler{
		wishlistService: wishlistService,
		authService:     authService,
	}
}

// List handles GET /api/wishlist
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	member, ok := currentMember(w, r, h.authService)
	if !ok {
		return
	}

	items, err := h.wishlistService.List(r.Context(), member.ID)
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Success(w, items)
}

// Add handles POST /api/wishlist/{bookId}
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	bookID, ok := pathID(w, r, "bookId")
	if !ok {
		return
	}

	member, ok := currentMember(w, r, h.authService)
	if !ok {
		return
	}

	item, err := h.wishlistService.Add(r.Context(), member.ID, bookID)
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Created(w, item)
}

// Remove handles DELETE /api/wishlist/{bookId}
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	bookID, ok := pathID(w, r, "bookId")
	if !ok {
		return
	}

	member, ok := currentMember(w, r, h.authService)
	if !ok {
		return
	}

	if err := h.wishlistService.Remove(r.Context(), member.ID, bookID); err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Message(w, "Book removed from wishlist")
}
