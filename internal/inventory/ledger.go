package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
)

// ErrInsufficientStock signals that a conditional decrement found fewer units
// than requested. The row is left untouched in that case.
var ErrInsufficientStock = errors.New("insufficient stock")

// Ledger performs guarded stock movements on the product table.
type Ledger struct {
	db *gorm.DB
}

// NewLedger constructs a ledger bound to the provided GORM DB.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// WithTx returns a ledger bound to the provided transaction.
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	if tx == nil {
		return l
	}
	return &Ledger{db: tx}
}

// GetForCheckout loads the current product rows for the given ids.
func (l *Ledger) GetForCheckout(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*models.Product{}, nil
	}
	var list []models.Product
	if err := l.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*models.Product, len(list))
	for i := range list {
		out[list[i].ID] = &list[i]
	}
	return out, nil
}

// Decrement atomically subtracts qty from the product's stock. The guard in
// the WHERE clause makes oversell impossible regardless of interleaving.
func (l *Ledger) Decrement(ctx context.Context, productID uuid.UUID, qty int) error {
	result := l.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// Restock adds qty back to the product's stock.
func (l *Ledger) Restock(ctx context.Context, productID uuid.UUID, qty int) error {
	result := l.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
