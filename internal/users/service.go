package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/pkg/config"
	"github.com/storefrontlabs/storefront-backend/pkg/db"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/pagination"
	"github.com/storefrontlabs/storefront-backend/pkg/security"
)

var sortableColumns = map[string]string{
	"name":       "name",
	"email":      "email",
	"created_at": "created_at",
}

// UpdateRequest is the payload accepted by PUT /users/{id}.
type UpdateRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=120"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8,max=128"`
}

// ListFilter narrows the admin user listing.
type ListFilter struct {
	Role *enums.Role
	Page pagination.Params
}

// ListResult is one page of users plus metadata.
type ListResult struct {
	Users []UserDTO           `json:"users"`
	Meta  pagination.PageMeta `json:"meta"`
}

// Service exposes user management operations.
type Service struct {
	repo        *Repository
	passwordCfg config.PasswordConfig
}

// NewService builds the users service.
func NewService(repo *Repository, passwordCfg config.PasswordConfig) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	return &Service{repo: repo, passwordCfg: passwordCfg}, nil
}

// Get returns a single user by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	dto := FromModel(user)
	return &dto, nil
}

// List returns a page of users for the admin surface.
func (s *Service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	page, err := pagination.Normalize(filter.Page, sortableColumns, "created_at")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pagination")
	}

	list, total, err := s.repo.List(ctx, filter.Role, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}

	dtos := make([]UserDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, FromModel(&list[i]))
	}
	return &ListResult{Users: dtos, Meta: pagination.NewPageMeta(page, total)}, nil
}

// Update applies a partial update, rehashing the password when one is supplied.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*UserDTO, error) {
	dto := UpdateUserDTO{Name: req.Name, Email: req.Email}
	if req.Password != nil {
		hash, err := security.HashPassword(*req.Password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		dto.PasswordHash = &hash
	}

	user, err := s.repo.Update(ctx, id, dto)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user")
	}
	out := FromModel(user)
	return &out, nil
}

// Delete removes the user and cascades to their cart and orders.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete user")
	}
	return nil
}
