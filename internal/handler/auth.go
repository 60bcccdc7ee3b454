package handler

import (
	"net/http"

	"github.com/segyhp/library-circulation/internal/auth"
	"github.com/segyhp/library-circulation/internal/domain"
	"github.com/segyhp/library-circulation/internal/service"
	"github.com/segyhp/library-circulation/pkg/response"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Signin handles POST /api/auth/signin
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req domain.SigninRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	jwt, err := h.authService.Signin(r.Context(), &req)
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Success(w, jwt)
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	member, err := h.authService.Signup(r.Context(), &req)
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Created(w, member)
}

// SetupAdmin handles POST /api/auth/setup-admin
func (h *AuthHandler) SetupAdmin(w http.ResponseWriter, r *http.Request) {
	var req domain.AdminSetupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.authService.SetupAdmin(r.Context(), &req); err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Message(w, "Admin user created successfully")
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Full authentication is required to access this resource")
		return
	}

	current, err := h.authService.Me(r.Context(), claims.UserID())
	if err != nil {
		response.Fail(w, r, err)
		return
	}

	response.Success(w, current)
}
