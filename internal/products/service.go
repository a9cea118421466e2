package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/pagination"
)

var sortableColumns = map[string]string{
	"title":      "title",
	"price":      "price",
	"stock":      "stock",
	"created_at": "created_at",
}

// Service exposes catalog management operations.
type Service struct {
	repo *Repository
}

// NewService builds the products service.
func NewService(repo *Repository) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository is required")
	}
	return &Service{repo: repo}, nil
}

// Create validates and persists a new product.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*ProductDTO, error) {
	if req.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	product, err := s.repo.Create(ctx, &models.Product{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Price:       req.Price,
		Stock:       req.Stock,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	dto := FromModel(product)
	return &dto, nil
}

// Get returns a single product by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	dto := FromModel(product)
	return &dto, nil
}

// List returns a filtered catalog page.
func (s *Service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minPrice cannot exceed maxPrice")
	}

	page, err := pagination.Normalize(filter.Page, sortableColumns, "created_at")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pagination")
	}

	list, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	dtos := make([]ProductDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, FromModel(&list[i]))
	}
	return &ListResult{Products: dtos, Meta: pagination.NewPageMeta(page, total)}, nil
}

// Update applies a partial update to an existing product.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*ProductDTO, error) {
	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		updates["category"] = strings.TrimSpace(*req.Category)
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		updates["price"] = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		updates["stock"] = *req.Stock
	}

	product, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	dto := FromModel(product)
	return &dto, nil
}

// Delete removes a product from the catalog.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	return nil
}
