package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/storefrontlabs/storefront-backend/pkg/pagination"
)

// Repository exposes cart persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindOrCreateByUser returns the user's cart, creating one on first use.
func (r *Repository) FindOrCreateByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = models.Cart{ID: uuid.New(), UserID: userID}
	if err := r.db.WithContext(ctx).Create(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindByUserWithItems loads the user's cart with its lines and product snapshots.
func (r *Repository) FindByUserWithItems(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// ListItems returns one page of cart lines whose product matches the
// filter, with the product rows preloaded.
func (r *Repository) ListItems(ctx context.Context, cartID uuid.UUID, filter ListFilter, page pagination.Params) ([]models.CartItem, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Joins("JOIN product ON product.id = cart_items.product_id").
		Where("cart_items.cart_id = ?", cartID)

	if filter.Category != "" {
		query = query.Where("product.category = ?", filter.Category)
	}
	if filter.MinPrice != nil {
		query = query.Where("product.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("product.price <= ?", *filter.MaxPrice)
	}
	if filter.MinStock > 0 {
		query = query.Where("product.stock >= ?", filter.MinStock)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.CartItem
	err := query.
		Preload("Product").
		Order(page.OrderBy()).
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// FindItem returns the cart line for the given product, if present.
func (r *Repository) FindItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// AddItem inserts a cart line or increments the quantity of an existing one.
func (r *Repository) AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	item, err := r.FindItem(ctx, cartID, productID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return r.db.WithContext(ctx).Create(&models.CartItem{
			ID:        uuid.New(),
			CartID:    cartID,
			ProductID: productID,
			Quantity:  quantity,
		}).Error
	}
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", item.ID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity)).Error
}

// SetItemQuantity overwrites the quantity of an existing cart line.
func (r *Repository) SetItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	result := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		UpdateColumn("quantity", quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RemoveItem deletes the cart line for the given product.
func (r *Repository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Clear removes every line of the cart.
func (r *Repository) Clear(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error
}
