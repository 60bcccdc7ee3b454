package domain

type SigninRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
}

// AdminSetupRequest bootstraps the first administrator
type AdminSetupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

// CreateAdminRequest adds an administrator without a member profile
type CreateAdminRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=USER ADMIN"`
}

// JWTResponse is returned by signin
type JWTResponse struct {
	Token    string `json:"token"`
	Type     string `json:"type"`
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	MemberID *int64 `json:"memberId,omitempty"`
}

// CurrentUser is the payload of GET /api/auth/me
type CurrentUser struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Role     string  `json:"role"`
	Member   *Member `json:"member,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
