package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

// MigrationsTable is where goose records applied schema versions.
const MigrationsTable = "schema_migrations"

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus   `json:"status"`
	Message    string         `json:"message,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CheckedAt  time.Time      `json:"checked_at"`
	DurationMs int64          `json:"duration_ms"`
}

type check func(ctx context.Context) (map[string]any, error)

type HealthHandler struct {
	db     *sqlx.DB
	checks map[string]check
}

func NewHealthHandler(db *sqlx.DB) *HealthHandler {
	h := &HealthHandler{db: db}
	h.checks = map[string]check{
		"postgres": h.checkDatabase,
		"schema":   h.checkSchema,
	}
	return h
}

// Ping reports liveness only.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
}

// Health runs every readiness check. Any failing component makes the whole
// response 503.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:     HealthHealthy,
		Components: make(map[string]CheckEntry, len(h.checks)),
	}
	for name, run := range h.checks {
		start := time.Now()
		details, err := run(ctx)
		entry := CheckEntry{
			Status:     HealthHealthy,
			Details:    details,
			CheckedAt:  time.Now(),
			DurationMs: time.Since(start).Milliseconds(),
		}
		if err != nil {
			entry.Status = HealthUnhealthy
			entry.Message = err.Error()
			resp.Status = HealthUnhealthy
		}
		resp.Components[name] = entry
	}
	resp.CheckedAt = time.Now()

	statusCode := http.StatusOK
	if resp.Status == HealthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) (map[string]any, error) {
	err := h.db.PingContext(ctx)
	stats := h.db.Stats()
	return map[string]any{
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
	}, err
}

// checkSchema reports the latest applied migration. A missing table means
// the migrate command never ran.
func (h *HealthHandler) checkSchema(ctx context.Context) (map[string]any, error) {
	var version int64
	query := `SELECT COALESCE(MAX(version_id), 0) FROM ` + MigrationsTable + ` WHERE is_applied`
	if err := h.db.GetContext(ctx, &version, query); err != nil {
		return nil, err
	}
	return map[string]any{"version": version}, nil
}
