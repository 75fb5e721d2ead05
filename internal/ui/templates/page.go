package templates

import (
	"context"
	"encoding/json"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"ecodrops-dashboard/internal/insights"
	"ecodrops-dashboard/internal/models"
	"ecodrops-dashboard/internal/services"
)

// PageData is everything the full dashboard page needs for its first paint.
type PageData struct {
	Options   services.Options
	Selection services.SelectionView
	Trend     services.TrendView
	Anomalies []models.AnomalyRow
	Tips      insights.Tips
	Skipped   int
}

// Signals is the initial datastar signal set of the page.
type Signals struct {
	Country string `json:"country"`
	Year    int    `json:"year"`
	Tab     string `json:"tab"`
}

type pageView struct {
	Options        services.Options
	Country        string
	Year           int
	HasData        bool
	Skipped        int
	Signals        string
	Gauge          template.HTML
	Prediction     template.HTML
	Breakdown      template.HTML
	Actions        template.HTML
	Recommendation template.HTML
	Trend          template.HTML
	Anomalies      template.HTML
	Tips           template.HTML
}

// Dashboard renders the full page with all four tabs.
func Dashboard(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		signals, err := json.Marshal(Signals{
			Country: data.Selection.Country,
			Year:    data.Selection.Year,
			Tab:     "dashboard",
		})
		if err != nil {
			return err
		}

		view := pageView{
			Options: data.Options,
			Country: data.Selection.Country,
			Year:    data.Selection.Year,
			HasData: len(data.Options.Countries) > 0,
			Skipped: data.Skipped,
			Signals: string(signals),
		}

		parts := []struct {
			dst *template.HTML
			c   templ.Component
		}{
			{&view.Gauge, GaugePanel(data.Selection)},
			{&view.Prediction, PredictionPanel(data.Selection)},
			{&view.Breakdown, BreakdownPanel(data.Selection)},
			{&view.Actions, ReportActions(data.Selection)},
			{&view.Recommendation, RecommendationPanel(data.Selection)},
			{&view.Trend, TrendPanel(data.Trend)},
			{&view.Anomalies, AnomalyPanel(data.Anomalies)},
			{&view.Tips, TipsPanel(data.Tips)},
		}
		for _, p := range parts {
			html, err := renderHTML(ctx, p.c)
			if err != nil {
				return err
			}
			*p.dst = html
		}

		return tmpl.ExecuteTemplate(w, "page", view)
	})
}
