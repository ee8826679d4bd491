package handlers

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type readinessCheck struct {
	name  string
	probe func(context.Context) error
}

// HealthHandler answers liveness and readiness. Liveness is unconditional;
// readiness pings every registered backend and fails if any of them do.
type HealthHandler struct {
	checks []readinessCheck
}

func NewHealthHandler(db *pgxpool.Pool, rdb *redis.Client) *HealthHandler {
	h := &HealthHandler{}
	if db != nil {
		h.checks = append(h.checks, readinessCheck{"database", db.Ping})
	}
	if rdb != nil {
		h.checks = append(h.checks, readinessCheck{"redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}
	return h
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ready := true
	results := make(map[string]string, len(h.checks))
	for _, c := range h.checks {
		if err := c.probe(r.Context()); err != nil {
			results[c.name] = err.Error()
			ready = false
		} else {
			results[c.name] = "ok"
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]interface{}{"ready": ready, "checks": results})
}
