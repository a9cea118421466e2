package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/storefrontlabs/storefront-backend/api/responses"
	"github.com/storefrontlabs/storefront-backend/api/validators"
	productsvc "github.com/storefrontlabs/storefront-backend/internal/products"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
	"github.com/storefrontlabs/storefront-backend/pkg/pagination"
)

// CreateProduct handles POST /products for admins.
func CreateProduct(svc *productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload productsvc.CreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// GetProduct handles GET /products/{id}.
func GetProduct(svc *productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ListProducts handles GET /products with filtering and pagination.
func ListProducts(svc *productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		filter, err := parseProductFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// UpdateProduct handles PUT /products/{id} for admins.
func UpdateProduct(svc *productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productsvc.UpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// DeleteProduct handles DELETE /products/{id} for admins.
func DeleteProduct(svc *productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"message": "product deleted"})
	}
}

func parseProductFilter(r *http.Request) (productsvc.ListFilter, error) {
	query := r.URL.Query()
	filter := productsvc.ListFilter{
		Category:  strings.TrimSpace(query.Get("category")),
		Available: query.Get("available") == "true",
		Query:     strings.TrimSpace(query.Get("q")),
		Page:      parsePageParams(r),
	}

	if raw := strings.TrimSpace(query.Get("minPrice")); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return productsvc.ListFilter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid minPrice")
		}
		filter.MinPrice = &price
	}
	if raw := strings.TrimSpace(query.Get("maxPrice")); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return productsvc.ListFilter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid maxPrice")
		}
		filter.MaxPrice = &price
	}
	return filter, nil
}

func parsePageParams(r *http.Request) pagination.Params {
	query := r.URL.Query()
	page, _ := validators.ParseQueryInt(r, "page", 1, 1, 1<<30)
	limit, _ := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
	return pagination.Params{
		Page:  page,
		Limit: limit,
		Sort:  strings.TrimSpace(query.Get("sort")),
		Order: strings.TrimSpace(query.Get("order")),
	}
}
