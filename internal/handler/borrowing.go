package handler

import (
	"net/http"

	"github.com/segyhp/library-circulation/internal/auth"
	"github.com/segyhp/library-circulation/internal/domain"
	"github.com/segyhp/library-circulation/internal/repository"
	"github.com/segyhp/library-circulation/internal/service"
	customError "github.com/segyhp/library-circulation/pkg/errors"
	"github.com/segyhp/library-circulation/pkg/response"
)

type BorrowingHandler struct {
	borrowingService *service.BorrowingService
	authService      *service.AuthService
}

func NewBorrowingHandler(borrowingService *service.BorrowingService, authService *service.AuthService) *BorrowingHandler {
	return &BorrowingHandler{
		borrowingService: borrowingService,
		authService:      authService,
	}
}

// Borrow handles POST /api/borrowings/borrow/{bookId}
func (h *BorrowingHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	bookID, ok := pathID(w, r, "bookId")
	if !ok {
		return
	}

	member, ok := currentMember(w, r, h.authService)
	if !ok {
		return
	}

	borrowing, err := h.borrowingService.Borrow(r.Context(), member.ID, bookID)
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Created(w, borrowing)
}

// Return handles PUT /api/borrowings/return/{id}
func (h *BorrowingHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	memberID, ok := h.actingMember(w, r)
	if !ok {
		return
	}

	borrowing, err := h.borrowingService.Return(r.Context(), id, memberID)
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Success(w, borrowing)
}

// Renew handles PUT /api/borrowings/renew/{id}
func (h *BorrowingHandler) Renew(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	memberID, ok := h.actingMember(w, r)
	if !ok {
		return
	}

	borrowing, err := h.borrowingService.Renew(r.Context(), id, memberID)
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Success(w, borrowing)
}

// Current handles GET /api/borrowings/current
func (h *BorrowingHandler) Current(w http.ResponseWriter, r *http.Request) {
	h.listOwn(w, r, repository.BorrowingsCurrent)
}

// History handles GET /api/borrowings/history
func (h *BorrowingHandler) History(w http.ResponseWriter, r *http.Request) {
	h.listOwn(w, r, repository.BorrowingsHistory)
}

// Get handles GET /api/borrowings/{id}. Members only see their own records.
func (h *BorrowingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	memberID, ok := h.actingMember(w, r)
	if !ok {
		return
	}

	borrowing, err := h.borrowingService.Get(r.Context(), id)
	if err != nil {
		response.Fail(w, r, err)
		return
	}
	if memberID != service.AnyMember && borrowing.Member.ID != memberID {
		response.Fail(w, r, customError.WrapNotBorrower(id))
		return
	}

	response.Success(w, borrowing)
}

// ByMember handles GET /api/borrowings/member/{memberId} and its current and history variants
func (h *BorrowingHandler) ByMember(filter repository.BorrowingFilter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID, ok := pathID(w, r, "memberId")
		if !ok {
			return
		}

		borrowings, err := h.borrowingService.ByMember(r.Context(), memberID, filter)
		if err != nil {
			response.Fail(w, r, err)
			return
		}

		response.Success(w, borrowings)
	}
}

// TotalFines handles GET /api/borrowings/member/{memberId}/total-fines
func (h *BorrowingHandler) TotalFines(w http.ResponseWriter, r *http.Request) {
	memberID, ok := pathID(w, r, "memberId")
	if !ok {
		return
	}

	total, err := h.borrowingService.TotalFines(r.Context(), memberID)
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Success(w, domain.TotalFinesResponse{MemberID: memberID, TotalFines: total})
}

// ByBook handles GET /api/borrowings/book/{bookId}
func (h *BorrowingHandler) ByBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := pathID(w, r, "bookId")
	if !ok {
		return
	}

	borrowings, err := h.borrowingService.ByBook(r.Context(), bookID)
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Success(w, borrowings)
}

// Overdue handles GET /api/borrowings/overdue
func (h *BorrowingHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	borrowings, err := h.borrowingService.Overdue(r.Context())
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Success(w, borrowings)
}

// CalculateFines handles POST /api/borrowings/calculate-fines
func (h *BorrowingHandler) CalculateFines(w http.ResponseWriter, r *http.Request) {
	updated, err := h.borrowingService.AccrueFines(r.Context())
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Success(w, map[string]int{"updated": updated})
}

func (h *BorrowingHandler) listOwn(w http.ResponseWriter, r *http.Request, filter repository.BorrowingFilter) {
	member, ok := currentMember(w, r, h.authService)
	if !ok {
		return
	}

	borrowings, err := h.borrowingService.ByMember(r.Context(), member.ID, filter)
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Success(w, borrowings)
}

// actingMember returns AnyMember for administrators and the caller's member id otherwise
func (h *BorrowingHandler) actingMember(w http.ResponseWriter, r *http.Request) (int64, bool) {
	if claims, ok := auth.FromContext(r.Context()); ok && claims.IsAdmin() {
		return service.AnyMember, true
	}

	member, ok := currentMember(w, r, h.authService)
	if !ok {
		return 0, false
	}
	return member.ID, true
}
