package handler

import (
	"net/http"

	"github.com/segyhp/library-circulation/internal/domain"
	"github.com/segyhp/library-circulation/internal/service"
	"github.com/segyhp/library-circulation/pkg/response"
)

// AdminHandler serves the /api/admin console
type AdminHandler struct {
	bookService      *service.BookService
	memberService    *service.MemberService
	authService      *service.AuthService
	borrowingService *service.BorrowingService
	statsService     *service.StatsService
}

func NewAdminHandler(
	bookService *service.BookService,
	memberService *service.MemberService,
	authService *service.AuthService,
	borrowingService *service.BorrowingService,
	statsService *service.StatsService,
) *AdminHandler {
	return &AdminHandler{
		bookService:      bookService,
		memberService:    memberService,
		authService:      authService,
		borrowingService: borrowingService,
		statsService:     statsService,
	}
}

func (h *AdminHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.bookService.List(r.Context())
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Success(w, books)
}

func (h *AdminHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req domain.BookRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	book, err := h.bookService.Create(r.Context(), &req)
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Created(w, book)
}

func (h *AdminHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req domain.BookRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	book, err := h.bookService.Update(r.Context(), id, &req)
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Success(w, book)
}

func (h *AdminHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.bookService.Delete(r.Context(), id); err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Message(w, "Book deleted successfully")
}

func (h *AdminHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.memberService.List(r.Context())
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Success(w, members)
}

func (h *AdminHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	member, err := h.memberService.Get(r.Context(), id)
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Success(w, member)
}

func (h *AdminHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateMemberRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	member, err := h.memberService.Create(r.Context(), &req)
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Created(w, member)
}

func (h *AdminHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req domain.UpdateMemberRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	member, err := h.memberService.Update(r.Context(), id, &req)
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Success(w, member)
}

// DeleteMember refuses members that still hold books
func (h *AdminHandler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.memberService.Delete(r.Context(), id); err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Message(w, "Member deleted successfully")
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.ListUsers(r.Context())
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Success(w, users)
}

func (h *AdminHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAdminRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.authService.CreateAdmin(r.Context(), &req)
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Created(w, user)
}

func (h *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req domain.UpdateRoleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.authService.UpdateRole(r.Context(), id, req.Role)
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Success(w, user)
}

func (h *AdminHandler) Borrowings(w http.ResponseWriter, r *http.Request) {
	borrowings, err := h.borrowingService.All(r.Context())
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Success(w, borrowings)
}

// OverdueBooks handles GET /api/admin/stats/overdue-books
func (h *AdminHandler) OverdueBooks(w http.ResponseWriter, r *http.Request) {
	borrowings, err := h.borrowingService.Overdue(r.Context())
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Success(w, borrowings)
}

// Dashboard handles GET /api/admin/stats and GET /api/admin/stats/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.Dashboard(r.Context())
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Success(w, stats)
}
