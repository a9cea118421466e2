package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem captures the immutable snapshot of each purchased line.
// PriceAtPurchase is frozen at checkout time and never follows later
// catalog price changes.
type OrderItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Quantity        int             `gorm:"column:quantity;not null"`
	PriceAtPurchase decimal.Decimal `gorm:"column:price_at_purchase;type:numeric(12,2);not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
