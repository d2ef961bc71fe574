package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/ability-api/internal/apperror"
)

// Pinger checks a dependency. *sqlite.DB implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db     Pinger
	logger *slog.Logger
}

func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// HandleHealth answers {"status": "ok"} while the database responds.
//
// HTTP: GET /healthz
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		writeError(w, h.logger, r, apperror.Store("checking database", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
