package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"
	"golang.org/x/sync/errgroup"

	"ecodrops-dashboard/internal/errors"
	"ecodrops-dashboard/internal/observability"
	"ecodrops-dashboard/internal/services"
	"ecodrops-dashboard/internal/ui/templates"
)

type SSEHandlers struct {
	dashboard *services.Dashboard
	metrics   *observability.Metrics
	logger    *slog.Logger
}

func NewSSEHandlers(dashboard *services.Dashboard, metrics *observability.Metrics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		dashboard: dashboard,
		metrics:   metrics,
		logger:    logger,
	}
}

type panel struct {
	name      string
	component templ.Component
}

func selectionPanels(view services.SelectionView) []panel {
	return []panel{
		{templates.GaugePanelID, templates.GaugePanel(view)},
		{templates.PredictionPanelID, templates.PredictionPanel(view)},
		{templates.BreakdownPanelID, templates.BreakdownPanel(view)},
		{templates.RecommendationPanelID, templates.RecommendationPanel(view)},
		{templates.ReportActionsID, templates.ReportActions(view)},
	}
}

// renderPanels renders every panel concurrently. The result keeps the input
// order so patches are sent deterministically.
func (h *SSEHandlers) renderPanels(ctx context.Context, panels []panel) ([]string, error) {
	out := make([]string, len(panels))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range panels {
		g.Go(func() error {
			spanCtx, span := observability.StartSpan(ctx, "render "+p.name)
			span.SetTag("panel", p.name)
			defer span.Finish(h.logger)

			start := time.Now()
			html, err := templates.RenderString(spanCtx, p.component)
			h.metrics.PanelRenderDuration.WithLabelValues(p.name).Observe(time.Since(start).Seconds())
			if err != nil {
				span.SetError(err)
				return fmt.Errorf("render %s: %w", p.name, err)
			}
			out[i] = html
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// renderFailure maps a render error to its envelope. Running out of time
// under load is reported as 503 rather than a server fault.
func renderFailure(err error, message string) *errors.AppError {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return errors.ServiceUnavailableWrap(err, message)
	}
	return errors.InternalWrap(err, message)
}

func (h *SSEHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}

// stream renders the panels and, only when all of them succeed, opens the SSE
// stream and sends one element patch per panel followed by the signals.
func (h *SSEHandlers) stream(w http.ResponseWriter, r *http.Request, panels []panel, signals any) {
	html, err := h.renderPanels(r.Context(), panels)
	if err != nil {
		h.fail(w, r, renderFailure(err, "failed to render dashboard panels"))
		return
	}

	sse := datastar.NewSSE(w, r)
	for i, fragment := range html {
		if err := sse.PatchElements(fragment); err != nil {
			h.logger.Warn("patch elements", "panel", panels[i].name, "error", err)
			return
		}
	}

	if signals == nil {
		return
	}
	payload, err := json.Marshal(signals)
	if err != nil {
		h.logger.Error("marshal signals", "error", err)
		return
	}
	if err := sse.PatchSignals(payload); err != nil {
		h.logger.Warn("patch signals", "error", err)
	}
}

type selectionPatch struct {
	Country string `json:"country"`
	Year    int    `json:"year"`
	Found   bool   `json:"found"`
}

// HandleSelection re-renders the four selection views and the report actions
// for the (country, year) in the request signals.
func (h *SSEHandlers) HandleSelection(w http.ResponseWriter, r *http.Request) {
	sel, err := selectionFromSignals(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	view := h.dashboard.Select(sel.Country, sel.Year)
	recordSelection(h.metrics, view)

	h.stream(w, r, selectionPanels(view), selectionPatch{Country: view.Country, Year: view.Year, Found: view.Found})
}

func (h *SSEHandlers) HandleTrend(w http.ResponseWriter, r *http.Request) {
	country, err := countryFromSignals(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.stream(w, r, []panel{
		{templates.TrendPanelID, templates.TrendPanel(h.dashboard.Trend(country))},
	}, nil)
}

func (h *SSEHandlers) HandleAnomalies(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, []panel{
		{templates.AnomalyPanelID, templates.AnomalyPanel(h.dashboard.Anomalies())},
	}, nil)
}

// HandleRefreshAll patches every data-driven panel: the selection views, the
// trend for the selected country and the anomaly table.
func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sel, err := selectionFromSignals(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	view := h.dashboard.Select(sel.Country, sel.Year)
	recordSelection(h.metrics, view)

	panels := append(selectionPanels(view),
		panel{templates.TrendPanelID, templates.TrendPanel(h.dashboard.Trend(sel.Country))},
		panel{templates.AnomalyPanelID, templates.AnomalyPanel(h.dashboard.Anomalies())},
	)

	h.stream(w, r, panels, selectionPatch{Country: view.Country, Year: view.Year, Found: view.Found})
}
