package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/internal/cart"
	"github.com/storefrontlabs/storefront-backend/internal/inventory"
	"github.com/storefrontlabs/storefront-backend/internal/orders"
	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Result is the outcome of a successful checkout.
type Result struct {
	OrderID uuid.UUID       `json:"order_id"`
	Order   orders.OrderDTO `json:"order"`
}

// Service executes checkout orchestration.
type Service interface {
	Execute(ctx context.Context, userID uuid.UUID) (*Result, error)
}

type service struct {
	tx     txRunner
	carts  *cart.Repository
	ledger *inventory.Ledger
	orders *orders.Repository
}

// NewService builds the checkout service.
func NewService(tx txRunner, carts *cart.Repository, ledger *inventory.Ledger, ordersRepo *orders.Repository) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{
		tx:     tx,
		carts:  carts,
		ledger: ledger,
		orders: ordersRepo,
	}, nil
}

// Execute converts the user's cart into an order. Stock decrements, order
// creation and cart clearing commit or roll back as one unit.
func (s *service) Execute(ctx context.Context, userID uuid.UUID) (*Result, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	// cheap rejection before the transaction opens
	record, err := s.carts.FindByUserWithItems(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	if record == nil || len(record.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	var result *Result
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.carts.WithTx(tx)
		ledger := s.ledger.WithTx(tx)
		ordersRepo := s.orders.WithTx(tx)

		record, err := cartRepo.FindByUserWithItems(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}
		if len(record.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		ids := make([]uuid.UUID, 0, len(record.Items))
		for _, item := range record.Items {
			ids = append(ids, item.ProductID)
		}
		products, err := ledger.GetForCheckout(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load products")
		}

		total := decimal.Zero
		lines := make([]models.OrderItem, 0, len(record.Items))
		for _, item := range record.Items {
			product, ok := products[item.ProductID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeInternal, "cart references missing product").
					WithDetails(map[string]any{"product_id": item.ProductID.String()})
			}

			if err := ledger.Decrement(ctx, item.ProductID, item.Quantity); err != nil {
				if errors.Is(err, inventory.ErrInsufficientStock) {
					return pkgerrors.New(pkgerrors.CodeInsufficientStock,
						fmt.Sprintf("insufficient stock for %s", product.Title)).
						WithDetails(map[string]any{
							"product_id": product.ID.String(),
							"requested":  item.Quantity,
							"available":  product.Stock,
						})
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
			}

			// price captured at purchase time, later catalog edits do not apply
			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
			lines = append(lines, models.OrderItem{
				ProductID:       item.ProductID,
				Quantity:        item.Quantity,
				PriceAtPurchase: product.Price,
			})
		}

		order, err := ordersRepo.Create(ctx, &models.Order{
			UserID:      userID,
			Status:      enums.OrderStatusPending,
			TotalAmount: total,
			Items:       lines,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}

		if err := cartRepo.Clear(ctx, record.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}

		result = &Result{OrderID: order.ID, Order: orders.FromModel(order)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
