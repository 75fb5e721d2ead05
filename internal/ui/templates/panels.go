package templates

import (
	"errors"
	"html/template"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"ecodrops-dashboard/internal/charts"
	"ecodrops-dashboard/internal/dataset"
	"ecodrops-dashboard/internal/insights"
	"ecodrops-dashboard/internal/models"
	"ecodrops-dashboard/internal/services"
)

// Element ids patched by the SSE handlers.
const (
	GaugePanelID          = "gauge-panel"
	PredictionPanelID     = "prediction-panel"
	BreakdownPanelID      = "breakdown-panel"
	RecommendationPanelID = "recommendation-panel"
	ReportActionsID       = "report-actions"
	TrendPanelID          = "trend-panel"
	AnomalyPanelID        = "anomaly-panel"
	TipsPanelID           = "tips-panel"
)

const chartUnavailable = "Chart unavailable for this selection."

func GaugePanel(view services.SelectionView) templ.Component {
	return fragment(GaugePanelID, view)
}

func PredictionPanel(view services.SelectionView) templ.Component {
	return fragment(PredictionPanelID, view)
}

func RecommendationPanel(view services.SelectionView) templ.Component {
	return fragment(RecommendationPanelID, view)
}

type breakdownData struct {
	View    services.SelectionView
	Bar     template.HTML
	BarNote string
	Pie     template.HTML
	PieNote string
}

// BreakdownPanel draws the usage bar and pie charts. A chart that cannot be
// drawn is replaced by a note; the rest of the panel still renders.
func BreakdownPanel(view services.SelectionView) templ.Component {
	data := breakdownData{View: view}
	if view.Found && view.Breakdown != nil {
		if svg, err := charts.BreakdownBar(*view.Breakdown); err == nil {
			data.Bar = template.HTML(svg)
		} else {
			data.BarNote = chartUnavailable
		}
		svg, err := charts.BreakdownPie(*view.Breakdown)
		switch {
		case err == nil:
			data.Pie = template.HTML(svg)
		case errors.Is(err, charts.ErrNoData):
			data.PieNote = "No usage shares to plot."
		default:
			data.PieNote = chartUnavailable
		}
	}
	return fragment(BreakdownPanelID, data)
}

type reportActionsData struct {
	View     services.SelectionView
	CSVHref  string
	CSVName  string
	XLSXHref string
	XLSXName string
}

// ReportHref is the download URL for a selection in the given format.
func ReportHref(country string, year int, ext string) string {
	q := url.Values{}
	q.Set("country", country)
	q.Set("year", strconv.Itoa(year))
	return "/export/report." + ext + "?" + q.Encode()
}

func ReportActions(view services.SelectionView) templ.Component {
	data := reportActionsData{View: view}
	if view.Found {
		data.CSVHref = ReportHref(view.Country, view.Year, "csv")
		data.CSVName = dataset.ReportFilename(view.Country, view.Year, "csv")
		data.XLSXHref = ReportHref(view.Country, view.Year, "xlsx")
		data.XLSXName = dataset.ReportFilename(view.Country, view.Year, "xlsx")
	}
	return fragment(ReportActionsID, data)
}

type trendData struct {
	View services.TrendView
	SVG  template.HTML
	Note string
}

func TrendPanel(view services.TrendView) templ.Component {
	data := trendData{View: view}
	if view.Found {
		if svg, err := charts.TrendLine(view.Country, view.Points); err == nil {
			data.SVG = template.HTML(svg)
		} else {
			data.Note = chartUnavailable
		}
	}
	return fragment(TrendPanelID, data)
}

func AnomalyPanel(rows []models.AnomalyRow) templ.Component {
	return fragment(AnomalyPanelID, rows)
}

func TipsPanel(tips insights.Tips) templ.Component {
	return fragment(TipsPanelID, tips)
}
