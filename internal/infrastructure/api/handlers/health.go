package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/mufasadev/ramp-reconciler/pkg/postgresql"
)

const healthTimeout = 2 * time.Second

type HealthHandler struct {
	db postgresql.Pinger
}

func NewHealthHandler(db postgresql.Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
