package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/storefrontlabs/storefront-backend/pkg/pagination"
)

// CreateRequest is the payload accepted by POST /products.
type CreateRequest struct {
	Title       string          `json:"title" validate:"required,min=2,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	Category    string          `json:"category" validate:"required,max=100"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Stock       int             `json:"stock" validate:"gte=0"`
}

// UpdateRequest is the payload accepted by PUT /products/{id}.
type UpdateRequest struct {
	Title       *string          `json:"title" validate:"omitempty,min=2,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	Category    *string          `json:"category" validate:"omitempty,max=100"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
}

// ListFilter narrows the public catalog listing.
type ListFilter struct {
	Category  string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	Available bool
	Query     string
	Page      pagination.Params
}

// ProductDTO is the public representation of a catalog product.
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ListResult is one page of products plus metadata.
type ListResult struct {
	Products []ProductDTO        `json:"products"`
	Meta     pagination.PageMeta `json:"meta"`
}

// FromModel maps a persisted product onto the public DTO.
func FromModel(p *models.Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
	}
}
