package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/storefrontlabs/storefront-backend/api/responses"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
)

func RequireRole(role enums.Role, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != role {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuthorizeSelfOrAdmin allows admins to act on any resource and users only on their own.
func AuthorizeSelfOrAdmin(ctx context.Context, ownerID uuid.UUID) error {
	if RoleFromContext(ctx) == enums.RoleAdmin {
		return nil
	}
	if UserIDFromContext(ctx) == ownerID.String() {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
}
