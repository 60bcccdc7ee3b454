package domain

import "time"

// User roles
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is a login account. Every user except bootstrap admins owns a member profile.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// IsAdmin reports whether the user may use the admin console
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Member is the borrowing profile attached to a user
type Member struct {
	ID        int64     `json:"id" db:"id"`
	UserID    *int64    `json:"userId,omitempty" db:"user_id"`
	Username  string    `json:"username,omitempty" db:"username"`
	FullName  string    `json:"fullName" db:"full_name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// MemberSummary is the part of a member embedded in borrowings
type MemberSummary struct {
	ID       int64  `json:"id" db:"id"`
	FullName string `json:"fullName" db:"full_name"`
	Email    string `json:"email" db:"email"`
}

type CreateMemberRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
}

type UpdateMemberRequest struct {
	FullName string `json:"fullName" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
}
