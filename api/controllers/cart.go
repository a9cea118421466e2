package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/storefrontlabs/storefront-backend/api/responses"
	"github.com/storefrontlabs/storefront-backend/api/validators"
	cartsvc "github.com/storefrontlabs/storefront-backend/internal/cart"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
)

func parseCartFilter(r *http.Request) (cartsvc.ListFilter, error) {
	query := r.URL.Query()
	filter := cartsvc.ListFilter{
		Category: strings.TrimSpace(query.Get("category")),
		Page:     parsePageParams(r),
	}

	if raw := strings.TrimSpace(query.Get("minPrice")); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return cartsvc.ListFilter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid minPrice")
		}
		filter.MinPrice = &price
	}
	if raw := strings.TrimSpace(query.Get("maxPrice")); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return cartsvc.ListFilter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid maxPrice")
		}
		filter.MaxPrice = &price
	}
	if raw := strings.TrimSpace(query.Get("available")); raw != "" {
		minStock, err := validators.ParseQueryInt(r, "available", 0, 1, 1<<30)
		if err != nil {
			return cartsvc.ListFilter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid available")
		}
		filter.MinStock = minStock
	}
	return filter, nil
}

// GetCart handles GET /cart for the authenticated user.
func GetCart(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter, err := parseCartFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.Get(r.Context(), userID, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cart)
	}
}

// AddCartItem handles POST /cart.
func AddCartItem(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartsvc.AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.AddItem(r.Context(), userID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, cart)
	}
}

// ChangeCartItemQuantity handles PUT /cart/{productId}.
func ChangeCartItemQuantity(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartsvc.ChangeQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.ChangeQuantity(r.Context(), userID, productID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cart)
	}
}

// RemoveCartItem handles DELETE /cart/{productId}.
func RemoveCartItem(svc *cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.RemoveItem(r.Context(), userID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cart)
	}
}
