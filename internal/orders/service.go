package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/internal/inventory"
	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/pagination"
)

var sortableColumns = map[string]string{
	"status":     "status",
	"total":      "total_amount",
	"created_at": "created_at",
}

// txRunner runs a function inside a database transaction.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes order reads and the status workflow.
type Service struct {
	repo   *Repository
	ledger *inventory.Ledger
	tx     txRunner
}

// NewService builds the orders service.
func NewService(repo *Repository, ledger *inventory.Ledger, tx txRunner) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &Service{repo: repo, ledger: ledger, tx: tx}, nil
}

// Get returns a single order with its items.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	dto := FromModel(order)
	return &dto, nil
}

// List returns a page of orders, scoped to one user when userID is non-nil.
func (s *Service) List(ctx context.Context, userID *uuid.UUID, pageParams pagination.Params) (*ListResult, error) {
	if pageParams.Order == "" {
		// newest orders first unless the caller asks otherwise
		pageParams.Order = "desc"
	}
	page, err := pagination.Normalize(pageParams, sortableColumns, "created_at")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pagination")
	}

	list, total, err := s.repo.List(ctx, userID, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}

	dtos := make([]OrderDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, FromModel(&list[i]))
	}
	return &ListResult{Orders: dtos, Meta: pagination.NewPageMeta(page, total)}, nil
}

// UpdateStatus advances the workflow, rejecting transitions the state
// machine does not allow.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*OrderDTO, error) {
	target, err := enums.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}

	if !order.Status.CanTransitionTo(target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, target))
	}

	if target == enums.OrderStatusCancelled {
		if err := s.cancel(ctx, order, target); err != nil {
			return nil, err
		}
	} else {
		moved, err := s.repo.UpdateStatus(ctx, id, order.Status, target)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
		}
		if !moved {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
		}
	}

	order.Status = target
	dto := FromModel(order)
	return &dto, nil
}

// cancel moves the order to cancelled and returns its units to stock. The
// status flip and the restocks commit or roll back together.
func (s *Service) cancel(ctx context.Context, order *models.Order, target enums.OrderStatus) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ledger := s.ledger.WithTx(tx)

		moved, err := repo.UpdateStatus(ctx, order.ID, order.Status, target)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
		}

		for _, item := range order.Items {
			if err := ledger.Restock(ctx, item.ProductID, item.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restock cancelled order")
			}
		}
		return nil
	})
}
