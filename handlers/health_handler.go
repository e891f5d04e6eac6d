package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const healthTimeout = 2 * time.Second

// Pinger: *sql.DB удовлетворяет этому интерфейсу.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		slog.WarnContext(r.Context(), "health check failed", slog.Any("error", err))
		errorResponse(w, r, http.StatusServiceUnavailable, "UNAVAILABLE", "database is unreachable", nil)
		return
	}
	successResponse(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
