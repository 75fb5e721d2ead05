package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"ecodrops-dashboard/internal/errors"
	"ecodrops-dashboard/internal/observability"
	"ecodrops-dashboard/internal/services"
	"ecodrops-dashboard/internal/ui/templates"
)

const renderTimeout = 10 * time.Second

type PageHandlers struct {
	dashboard *services.Dashboard
	metrics   *observability.Metrics
	logger    *slog.Logger
}

func NewPageHandlers(dashboard *services.Dashboard, metrics *observability.Metrics, logger *slog.Logger) *PageHandlers {
	return &PageHandlers{
		dashboard: dashboard,
		metrics:   metrics,
		logger:    logger,
	}
}

// HandleDashboard renders the full page. The selectors start on the first
// country and year; country and year query parameters override either one.
func (h *PageHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	country, year, _ := h.dashboard.DefaultSelection()
	q := r.URL.Query()
	if c := q.Get("country"); c != "" {
		country = c
	}
	if raw := q.Get("year"); raw != "" {
		y, err := parseYear(raw)
		if err != nil {
			errors.WriteError(w, h.logger, err, observability.GetRequestID(ctx))
			return
		}
		year = y
	}

	view := h.dashboard.Select(country, year)
	recordSelection(h.metrics, view)

	page := templates.Dashboard(templates.PageData{
		Options:   h.dashboard.Options(),
		Selection: view,
		Trend:     h.dashboard.Trend(country),
		Anomalies: h.dashboard.Anomalies(),
		Tips:      h.dashboard.Tips(),
		Skipped:   len(h.dashboard.Table().Skipped()),
	})

	html, err := templates.RenderString(ctx, page)
	if err != nil {
		errors.WriteError(w, h.logger, renderFailure(err, "failed to render dashboard"), observability.GetRequestID(ctx))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(html)); err != nil {
		h.logger.Warn("write page", "error", err)
	}
}
