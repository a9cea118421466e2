package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopspring/decimal"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/pagination"
)

// defaultPageSize caps a cart read when the caller does not pick a limit.
const defaultPageSize = 10

var sortableColumns = map[string]string{
	"title":      "product.title",
	"price":      "product.price",
	"quantity":   "cart_items.quantity",
	"created_at": "cart_items.created_at",
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes cart operations for the authenticated shopper.
type Service struct {
	repo     *Repository
	products productLoader
}

// NewService builds the cart service.
func NewService(repo *Repository, products productLoader) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader is required")
	}
	return &Service{repo: repo, products: products}, nil
}

// Get returns one filtered page of the user's cart, creating an empty
// cart on first access.
func (s *Service) Get(ctx context.Context, userID uuid.UUID, filter ListFilter) (*PageDTO, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minPrice cannot exceed maxPrice")
	}

	cart, err := s.repo.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}

	if filter.Page.Limit <= 0 {
		filter.Page.Limit = defaultPageSize
	}
	page, err := pagination.Normalize(filter.Page, sortableColumns, "title")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pagination")
	}

	items, total, err := s.repo.ListItems(ctx, cart.ID, filter, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart items")
	}

	dto := &PageDTO{
		ID:    cart.ID,
		Items: make([]ItemDTO, 0, len(items)),
		Total: decimal.Zero,
		Meta:  pagination.NewPageMeta(page, total),
	}
	for _, item := range items {
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
	return dto, nil
}

// snapshot rebuilds the full cart after a mutation.
func (s *Service) snapshot(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.FindByUserWithItems(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart items")
	}
	dto := buildCartDTO(cart)
	return &dto, nil
}

// AddItem adds a product to the cart, merging quantities for repeat adds.
func (s *Service) AddItem(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*CartDTO, error) {
	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if product.Stock < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "product is out of stock").
			WithDetails(map[string]any{
				"product_id": product.ID.String(),
				"requested":  req.Quantity,
				"available":  product.Stock,
			})
	}

	cart, err := s.repo.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	if err := s.repo.AddItem(ctx, cart.ID, req.ProductID, req.Quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add cart item")
	}
	return s.snapshot(ctx, userID)
}

// ChangeQuantity increments or decrements one cart line. Decrementing the
// last unit removes the line.
func (s *Service) ChangeQuantity(ctx context.Context, userID, productID uuid.UUID, req ChangeQuantityRequest) (*CartDTO, error) {
	cart, err := s.repo.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}

	item, err := s.repo.FindItem(ctx, cart.ID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart item")
	}

	switch req.Action {
	case "increase":
		err = s.repo.SetItemQuantity(ctx, item.ID, item.Quantity+1)
	case "decrease":
		if item.Quantity <= 1 {
			err = s.repo.RemoveItem(ctx, cart.ID, productID)
		} else {
			err = s.repo.SetItemQuantity(ctx, item.ID, item.Quantity-1)
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "action must be increase or decrease")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart item")
	}
	return s.snapshot(ctx, userID)
}

// RemoveItem deletes one product line from the cart.
func (s *Service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	if err := s.repo.RemoveItem(ctx, cart.ID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove cart item")
	}
	return s.snapshot(ctx, userID)
}
