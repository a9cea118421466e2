package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/storefrontlabs/storefront-backend/pkg/pagination"
)

// ListFilter narrows a cart read to lines whose product matches.
// MinStock keeps only lines whose product still has at least that many
// units on hand.
type ListFilter struct {
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	MinStock int
	Page     pagination.Params
}

// AddItemRequest is the payload accepted by POST /cart.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// ChangeQuantityRequest adjusts one cart line by a single unit.
type ChangeQuantityRequest struct {
	Action string `json:"action" validate:"required,oneof=increase decrease"`
}

// ItemDTO is one cart line joined with its product snapshot.
type ItemDTO struct {
	ProductID uuid.UUID       `json:"product_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	Stock     int             `json:"stock"`
}

// CartDTO is the public representation of a user's cart.
type CartDTO struct {
	ID    uuid.UUID       `json:"id"`
	Items []ItemDTO       `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// PageDTO is one filtered page of cart lines. Total sums only the lines
// on this page.
type PageDTO struct {
	ID    uuid.UUID           `json:"id"`
	Items []ItemDTO           `json:"items"`
	Total decimal.Decimal     `json:"total"`
	Meta  pagination.PageMeta `json:"meta"`
}

func buildCartDTO(cart *models.Cart) CartDTO {
	dto := CartDTO{
		ID:    cart.ID,
		Items: make([]ItemDTO, 0, len(cart.Items)),
		Total: decimal.Zero,
	}
	for _, item := range cart.Items {
		line := ItemDTO{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
		if item.Product != nil {
			line.Title = item.Product.Title
			line.UnitPrice = item.Product.Price
			line.Stock = item.Product.Stock
			line.LineTotal = item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			dto.Total = dto.Total.Add(line.LineTotal)
		}
		dto.Items = append(dto.Items, line)
	}
	return dto
}
