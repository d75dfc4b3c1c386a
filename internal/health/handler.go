package health

import (
	"context"
	"net/http"
	"time"

	"github.com/Lelo88/inventory-api-golang/internal/httpx"
)

// readyTimeout acota el ping del readiness check.
const readyTimeout = 2 * time.Second

// Pinger es lo único que health necesita del store (pgxpool.Pool y SQLiteRepository lo cumplen).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler expone liveness y readiness.
type Handler struct {
	store Pinger
}

// New crea un handler de health. store puede ser nil: en ese caso /ready responde 503.
func New(store Pinger) *Handler {
	return &Handler{store: store}
}

// Health indica si el proceso está vivo. No toca la base.
func (handler *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httpx.OK(w, r, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready indica si la instancia puede atender tráfico (la base responde).
func (handler *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if handler.store == nil {
		httpx.Fail(w, r, http.StatusServiceUnavailable, httpx.CodeNotReady, "database pool not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := handler.store.Ping(ctx); err != nil {
		httpx.Fail(w, r, http.StatusServiceUnavailable, httpx.CodeNotReady, "database is not reachable")
		return
	}

	httpx.OK(w, r, http.StatusOK, map[string]any{"status": "ready"})
}
