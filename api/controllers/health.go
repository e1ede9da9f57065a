package controllers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/marcosvillarreal/reelstack-backend/api/responses"
	"github.com/marcosvillarreal/reelstack-backend/pkg/config"
	pkgerrors "github.com/marcosvillarreal/reelstack-backend/pkg/errors"
	"github.com/marcosvillarreal/reelstack-backend/pkg/logger"
)

const readinessTimeout = 3 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Reelstack-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every hard dependency and reports per-component status.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP, storageP pinger) http.HandlerFunc {
	checks := []struct {
		name string
		p    pinger
	}{
		{"database", dbP},
		{"redis", redisP},
		{"storage", storageP},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Reelstack-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		status := map[string]string{}
		var failures error
		for _, check := range checks {
			if check.p == nil {
				status[check.name] = "skipped"
				continue
			}
			if err := check.p.Ping(ctx); err != nil {
				status[check.name] = "unreachable"
				failures = multierr.Append(failures, err)
				continue
			}
			status[check.name] = "ok"
		}

		if failures != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, failures, "readiness check failed").
					WithDetails(status))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "components": status})
	}
}
