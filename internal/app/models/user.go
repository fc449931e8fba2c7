package models

import "github.com/techsupport-hub/portal/internal/pkg/access"

// User is the profile returned by the API's session check. The portal caches
// the last one it saw to render names without a round trip; it is never used
// to decide access.
type User struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       access.Role `json:"role"`
	Phone      string      `json:"phone,omitempty"`
	Department string      `json:"department,omitempty"`
	StudentID  string      `json:"studentId,omitempty"`
	AvatarURL  string      `json:"avatarUrl,omitempty"`
	Bio        string      `json:"bio,omitempty"`
}

// LandingPath is where a freshly signed-in user is sent.
func (u *User) LandingPath() string {
	if u == nil {
		return "/"
	}
	switch u.Role {
	case access.RoleAdmin:
		return "/admin"
	case access.RoleMember:
		return "/members"
	case access.RoleStudent:
		return "/student"
	default:
		return "/dashboard"
	}
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type RegisterRequest struct {
	Name            string `json:"name" form:"name" binding:"required"`
	Email           string `json:"email" form:"email" binding:"required,email"`
	StudentID       string `json:"studentId,omitempty" form:"student_id"`
	Password        string `json:"password" form:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"-" form:"confirm_password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" form:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token" form:"token" binding:"required"`
	Password        string `json:"password" form:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"-" form:"confirm_password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name       string `json:"name,omitempty" form:"name"`
	Phone      string `json:"phone,omitempty" form:"phone"`
	Department string `json:"department,omitempty" form:"department"`
	Bio        string `json:"bio,omitempty" form:"bio"`
}

// AuthResponse is the body of a successful login or registration.
type AuthResponse struct {
	Message string `json:"message,omitempty"`
	User    *User  `json:"user,omitempty"`
}
