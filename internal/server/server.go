package server

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ecodrops-dashboard/internal/handlers"
	"ecodrops-dashboard/internal/observability"
	"ecodrops-dashboard/internal/services"
)

type Server struct {
	dashboard      *services.Dashboard
	mux            *http.ServeMux
	logger         *slog.Logger
	metricsHandler http.Handler
	pageHandlers   *handlers.PageHandlers
	apiHandlers    *handlers.APIHandlers
	sseHandlers    *handlers.SSEHandlers
	exportHandlers *handlers.ExportHandlers
}

type Option func(*Server)

// WithMetricsHandler replaces the default Prometheus handler served on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metricsHandler = h }
}

func NewServer(dashboard *services.Dashboard, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		dashboard:      dashboard,
		mux:            http.NewServeMux(),
		logger:         logger,
		metricsHandler: promhttp.Handler(),
		pageHandlers:   handlers.NewPageHandlers(dashboard, metrics, logger),
		apiHandlers:    handlers.NewAPIHandlers(dashboard, metrics, logger),
		sseHandlers:    handlers.NewSSEHandlers(dashboard, metrics, logger),
		exportHandlers: handlers.NewExportHandlers(dashboard, metrics, logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", s.pageHandlers.HandleDashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	s.mux.Handle("GET /metrics", s.metricsHandler)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/options", s.apiHandlers.HandleOptions)
	s.mux.HandleFunc("GET /api/selection", s.apiHandlers.HandleSelection)
	s.mux.HandleFunc("GET /api/trend", s.apiHandlers.HandleTrend)
	s.mux.HandleFunc("GET /api/anomalies", s.apiHandlers.HandleAnomalies)
	s.mux.HandleFunc("GET /api/tips", s.apiHandlers.HandleTips)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/selection", s.sseHandlers.HandleSelection)
	s.mux.HandleFunc("GET /sse/trend", s.sseHandlers.HandleTrend)
	s.mux.HandleFunc("GET /sse/anomalies", s.sseHandlers.HandleAnomalies)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)

	// Downloads
	s.mux.HandleFunc("GET /export/report.csv", s.exportHandlers.HandleReportCSV)
	s.mux.HandleFunc("GET /export/report.xlsx", s.exportHandlers.HandleReportXLSX)
	s.mux.HandleFunc("GET /export/dataset.csv", s.exportHandlers.HandleDatasetCSV)
	s.mux.HandleFunc("GET /export/anomalies.csv", s.exportHandlers.HandleAnomaliesCSV)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
