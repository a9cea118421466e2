package controllers

import (
	"net/http"

	"github.com/storefrontlabs/storefront-backend/api/middleware"
	"github.com/storefrontlabs/storefront-backend/api/responses"
	"github.com/storefrontlabs/storefront-backend/api/validators"
	checkoutsvc "github.com/storefrontlabs/storefront-backend/internal/checkout"
	ordersvc "github.com/storefrontlabs/storefront-backend/internal/orders"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
	"github.com/storefrontlabs/storefront-backend/pkg/metrics"
)

// Checkout handles POST /orders, converting the caller's cart into an order.
func Checkout(svc checkoutsvc.Service, m *metrics.HTTPMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Execute(r.Context(), userID)
		if err != nil {
			if m != nil {
				m.IncCheckout(checkoutOutcome(err))
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if m != nil {
			m.IncCheckout("success")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"message":  "order created",
			"order_id": result.OrderID,
			"order":    result.Order,
		})
	}
}

func checkoutOutcome(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		switch typed.Code() {
		case pkgerrors.CodeInsufficientStock:
			return "insufficient_stock"
		case pkgerrors.CodeValidation:
			return "empty_cart"
		}
	}
	return "error"
}

// GetOrder handles GET /orders/{id}. Owners see their own orders, admins any.
func GetOrder(svc *ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := middleware.AuthorizeSelfOrAdmin(r.Context(), order.UserID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// ListOrders handles GET /orders. Admins see every order, users only their own.
func ListOrders(svc *ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scope := &userID
		if middleware.RoleFromContext(r.Context()) == enums.RoleAdmin {
			scope = nil
		}

		result, err := svc.List(r.Context(), scope, parsePageParams(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// UpdateOrderStatus handles PUT /orders/{id} for admins.
func UpdateOrderStatus(svc *ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload ordersvc.UpdateStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.UpdateStatus(r.Context(), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}
