package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is satisfied by the sqlite repository.
type Pinger interface {
	Ping(ctx context.Context) error
}

const healthTimeout = 2 * time.Second

type SystemHandler struct {
	Store Pinger
}

// HealthHandler reports the service up and, when a store is configured,
// whether the database answers. An unreachable database gives 503.
func (h *SystemHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok", "service": "b2b"}
	if h.Store == nil {
		writeJSON(w, body, http.StatusOK)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		reqID, _ := r.Context().Value(CtxRequestID).(string)
		logger.Error("database ping failed", slog.String("error", err.Error()), slog.String("request_id", reqID))
		body["status"] = "degraded"
		body["database"] = "unreachable"
		writeJSON(w, body, http.StatusServiceUnavailable)
		return
	}
	body["database"] = "ok"
	writeJSON(w, body, http.StatusOK)
}

func (h *SystemHandler) VersionHandler(version, buildTime string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","buildTime":"%s"}`, version, buildTime)
	}
}
