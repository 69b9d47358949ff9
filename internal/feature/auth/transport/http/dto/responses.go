package dto

import (
	"time"

	"votp_backend/internal/feature/auth/domain/entity"
)

// ErrorResponse carries a single error message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse carries a confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// EmailCheckResponse reports whether an email is already registered.
type EmailCheckResponse struct {
	Exists bool `json:"exists"`
}

// UserResponse is the public view of an account. The password credential is
// never exposed.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Bio       *string   `json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse bundles a session token with the account it belongs to.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// NewUserResponse maps an account entity to its public view.
func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
	}
}
