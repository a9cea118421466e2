package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
)

// CreateUserDTO carries the fields needed to persist a new user.
type CreateUserDTO struct {
	Name         string
	Email        string
	PasswordHash string
	Role         enums.Role
}

// ToModel converts the DTO into a persistable user model.
func (d CreateUserDTO) ToModel() *models.User {
	role := d.Role
	if role == "" {
		role = enums.RoleUser
	}
	return &models.User{
		ID:           uuid.New(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         role,
	}
}

// UpdateUserDTO carries optional fields for a partial user update.
type UpdateUserDTO struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Role         *enums.Role
}

// UserDTO is the public representation of a user, never exposing the hash.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        enums.Role `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// FromModel maps a persisted user onto the public DTO.
func FromModel(user *models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
