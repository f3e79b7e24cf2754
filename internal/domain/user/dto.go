package user

import "github.com/google/uuid"

// CreateRequest for POST /users/create
type CreateRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

// UpdateRequest for PUT /users/update. The account is the caller's.
type UpdateRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Password string `json:"password" validate:"required,max=128"`
}

// AuthRequest for POST /users/auth
type AuthRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse returned after a successful authentication
type AuthResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresIn int       `json:"expires_in"` // seconds until the token expires
}
