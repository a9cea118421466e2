package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	"github.com/storefrontlabs/storefront-backend/pkg/pagination"
)

// UpdateStatusRequest is the payload accepted by PUT /orders/{id}.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ItemDTO is one purchased line with its captured price.
type ItemDTO struct {
	ProductID       uuid.UUID       `json:"product_id"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// OrderDTO is the public representation of an order.
type OrderDTO struct {
	ID          uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"user_id"`
	Status      enums.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Items       []ItemDTO         `json:"items"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ListResult is one page of orders plus metadata.
type ListResult struct {
	Orders []OrderDTO          `json:"orders"`
	Meta   pagination.PageMeta `json:"meta"`
}

// FromModel maps a persisted order onto the public DTO.
func FromModel(order *models.Order) OrderDTO {
	dto := OrderDTO{
		ID:          order.ID,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Items:       make([]ItemDTO, 0, len(order.Items)),
		CreatedAt:   order.CreatedAt,
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, ItemDTO{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
			LineTotal:       item.PriceAtPurchase.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}
	return dto
}
