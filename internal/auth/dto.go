package auth

import (
	"github.com/storefrontlabs/storefront-backend/internal/users"
)

// RegisterRequest is the payload accepted by POST /auth/register.
type RegisterRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=120"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8,max=128"`
	RePassword string `json:"re_password" validate:"required"`
}

// LoginRequest is the payload accepted by POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the minted token and the authenticated user.
type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	User        users.UserDTO `json:"user"`
}

// RegisterResponse returns the created user.
type RegisterResponse struct {
	User users.UserDTO `json:"user"`
}
