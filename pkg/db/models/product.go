package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalog listing.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string          `gorm:"column:title;not null"`
	Description string          `gorm:"column:description;not null"`
	Category    string          `gorm:"column:category;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Stock       int             `gorm:"column:stock;not null;default:0;check:stock >= 0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the historical singular table name.
func (Product) TableName() string {
	return "product"
}
