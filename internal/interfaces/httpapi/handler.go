package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/rift-scout/internal/platform/logging"
	"github.com/riskibarqy/rift-scout/internal/platform/resilience"
	"github.com/riskibarqy/rift-scout/internal/usecase"
)

type matchViewBuilder interface {
	BuildViewWithGames(ctx context.Context, displayName string, games int) (usecase.MatchView, error)
}

// HealthCheck probes one dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

// UpstreamStatus is a point-in-time view of the shared Riot rate budget and breaker.
type UpstreamStatus struct {
	BreakerState resilience.CircuitState
	Limiter      resilience.LimiterStats
}

type Handler struct {
	matchViews   matchViewBuilder
	upstream     func() UpstreamStatus
	healthChecks map[string]HealthCheck
	logger       *logging.Logger
	validator    *validator.Validate
}

func NewHandler(
	matchViews matchViewBuilder,
	upstream func() UpstreamStatus,
	healthChecks map[string]HealthCheck,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		matchViews:   matchViews,
		upstream:     upstream,
		healthChecks: healthChecks,
		logger:       logger,
		validator:    validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	if len(h.healthChecks) == 0 {
		writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.healthChecks))
	for name := range h.healthChecks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	checks := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.healthChecks[name](ctx); err != nil {
			h.logger.WarnContext(ctx, "health check failed", "check", name, "error", err)
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	writeSuccess(ctx, w, status, healthDTO{Status: overall, Checks: checks})
}

func (h *Handler) GetUpstreamStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetUpstreamStatus")
	defer span.End()

	if h.upstream == nil {
		writeError(ctx, w, fmt.Errorf("%w: upstream status is not wired", usecase.ErrNotFound))
		return
	}
	writeSuccess(ctx, w, http.StatusOK, upstreamStatusToDTO(h.upstream()))
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
