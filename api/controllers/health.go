package controllers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/storefrontlabs/storefront-backend/api/responses"
	"github.com/storefrontlabs/storefront-backend/pkg/config"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthLive reports process liveness.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness by probing the database and redis.
func HealthReady(cfg *config.Config, db, cache pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		var errs error
		if db != nil {
			if err := db.Ping(ctx); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
		if cache != nil {
			if err := cache.Ping(ctx); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
		if errs != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "dependencies unavailable"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
