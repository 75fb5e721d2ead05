package handlers

import (
	"bytes"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"ecodrops-dashboard/internal/dataset"
	"ecodrops-dashboard/internal/errors"
	"ecodrops-dashboard/internal/models"
	"ecodrops-dashboard/internal/observability"
	"ecodrops-dashboard/internal/services"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	datasetFilename   = "water_usage_with_prediction.csv"
	anomaliesFilename = "water_usage_anomalies.csv"
)

type ExportHandlers struct {
	dashboard *services.Dashboard
	metrics   *observability.Metrics
	logger    *slog.Logger
}

func NewExportHandlers(dashboard *services.Dashboard, metrics *observability.Metrics, logger *slog.Logger) *ExportHandlers {
	return &ExportHandlers{
		dashboard: dashboard,
		metrics:   metrics,
		logger:    logger,
	}
}

func (h *ExportHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}

func (h *ExportHandlers) report(w http.ResponseWriter, r *http.Request) ([]models.UsageRecord, selection, bool) {
	sel, err := selectionFromQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return nil, sel, false
	}
	records, ok := h.dashboard.Report(sel.Country, sel.Year)
	if !ok {
		h.fail(w, r, errors.NotFound(services.NoDataNotice).WithDetails("country=%s year=%d", sel.Country, sel.Year))
		return nil, sel, false
	}
	return records, sel, true
}

func (h *ExportHandlers) HandleReportCSV(w http.ResponseWriter, r *http.Request) {
	records, sel, ok := h.report(w, r)
	if !ok {
		return
	}
	h.sendCSV(w, r, records, dataset.ReportFilename(sel.Country, sel.Year, "csv"), "report")
}

func (h *ExportHandlers) HandleReportXLSX(w http.ResponseWriter, r *http.Request) {
	records, sel, ok := h.report(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := dataset.WriteXLSX(&buf, records); err != nil {
		h.fail(w, r, errors.InternalWrap(err, "failed to build spreadsheet"))
		return
	}
	h.send(w, buf.Bytes(), contentTypeXLSX, dataset.ReportFilename(sel.Country, sel.Year, "xlsx"))
	h.metrics.Exports.WithLabelValues("xlsx", "report").Inc()
}

func (h *ExportHandlers) HandleDatasetCSV(w http.ResponseWriter, r *http.Request) {
	h.sendCSV(w, r, h.dashboard.Table().Records(), datasetFilename, "dataset")
}

// HandleAnomaliesCSV exports the full records of every anomalous row.
func (h *ExportHandlers) HandleAnomaliesCSV(w http.ResponseWriter, r *http.Request) {
	h.sendCSV(w, r, h.dashboard.Table().ByAnomaly(), anomaliesFilename, "anomalies")
}

func (h *ExportHandlers) sendCSV(w http.ResponseWriter, r *http.Request, records []models.UsageRecord, filename, scope string) {
	body, err := dataset.ExportCSV(records)
	if err != nil {
		h.fail(w, r, errors.InternalWrap(err, "failed to encode CSV"))
		return
	}
	h.send(w, body, contentTypeCSV, filename)
	h.metrics.Exports.WithLabelValues("csv", scope).Inc()
}

func (h *ExportHandlers) send(w http.ResponseWriter, body []byte, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.Warn("write export", "filename", filename, "error", err)
	}
}
