package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefrontlabs/storefront-backend/pkg/enums"
)

// Order is the header record produced by a successful checkout. Only the
// status column is mutable after creation.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	Status      enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	TotalAmount decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null;default:0"`
	Items       []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
