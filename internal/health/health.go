package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"portfolio-service/common/httputil"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type Handler struct {
	version string
	pinger  Pinger
	logger  *slog.Logger
	now     func() time.Time
}

func NewHandler(version string, pinger Pinger, logger *slog.Logger) *Handler {
	return &Handler{
		version: version,
		pinger:  pinger,
		logger:  logger,
		now:     time.Now,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/api/health", h.Health)
	router.Get("/api/ready", h.Ready)
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

type ReadyResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Check builds the liveness payload. It has no side effects.
func (h *Handler) Check() HealthResponse {
	return HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC().Format(timestampLayout),
		Version:   h.version,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, h.Check())
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.pinger != nil {
		if err := h.pinger.Ping(ctx); err != nil {
			h.logger.WarnContext(ctx, "readiness check failed", "error", err)
			httputil.RespondWithJSON(w, http.StatusServiceUnavailable, ReadyResponse{
				Status: "unavailable",
				Error:  "database unreachable",
			})
			return
		}
	}

	httputil.RespondWithJSON(w, http.StatusOK, ReadyResponse{Status: "ready"})
}
