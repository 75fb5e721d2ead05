package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"ecodrops-dashboard/internal/errors"
	"ecodrops-dashboard/internal/observability"
	"ecodrops-dashboard/internal/services"
)

const version = "1.0.0"

type APIHandlers struct {
	dashboard *services.Dashboard
	metrics   *observability.Metrics
	logger    *slog.Logger
}

func NewAPIHandlers(dashboard *services.Dashboard, metrics *observability.Metrics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		dashboard: dashboard,
		metrics:   metrics,
		logger:    logger,
	}
}

func (h *APIHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}

func (h *APIHandlers) HandleOptions(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.dashboard.Options(), map[string]string{
		"Cache-Control": cacheMaxAge,
	})
}

func (h *APIHandlers) HandleSelection(w http.ResponseWriter, r *http.Request) {
	sel, err := selectionFromQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	view := h.dashboard.Select(sel.Country, sel.Year)
	recordSelection(h.metrics, view)

	errors.WriteSuccess(w, view)
}

func (h *APIHandlers) HandleTrend(w http.ResponseWriter, r *http.Request) {
	country, err := countryFromQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	errors.WriteSuccessWithHeaders(w, h.dashboard.Trend(country), map[string]string{
		"Cache-Control": cacheMaxAge,
	})
}

func (h *APIHandlers) HandleAnomalies(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.dashboard.Anomalies(), map[string]string{
		"Cache-Control": cacheMaxAge,
	})
}

func (h *APIHandlers) HandleTips(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.dashboard.Tips(), map[string]string{
		"Cache-Control": cacheMaxAge,
	})
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, map[string]any{
		"status":    "healthy",
		"timestamp": h.dashboard.Now().UTC().Format(time.RFC3339),
		"version":   version,
		"records":   h.dashboard.Table().Len(),
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.dashboard.Stats())
}

func recordSelection(m *observability.Metrics, view services.SelectionView) {
	outcome := "found"
	if !view.Found {
		outcome = "empty"
	}
	m.Selections.WithLabelValues(outcome).Inc()
}
