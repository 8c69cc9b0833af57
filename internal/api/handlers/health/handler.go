package health

import (
	"context"
	"net/http"
	"time"

	"github.com/m04kA/SMC-StaffAllocator/internal/api/handlers"
)

// Pinger проверка доступности хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

type Logger interface {
	Warn(format string, v ...interface{})
}

type Handler struct {
	store   Pinger
	timeout time.Duration
	logger  Logger
}

func NewHandler(store Pinger, timeout time.Duration, logger Logger) *Handler {
	return &Handler{store: store, timeout: timeout, logger: logger}
}

// Live GET /healthz
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready GET /readyz
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("GET /readyz - store ping failed: %v", err)
		handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
