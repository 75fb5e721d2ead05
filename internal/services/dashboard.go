package services

import (
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"ecodrops-dashboard/internal/dataset"
	"ecodrops-dashboard/internal/insights"
	"ecodrops-dashboard/internal/models"
)

// NoDataNotice is shown on every selection panel when the chosen
// (country, year) has no record.
const NoDataNotice = "No data available for selected filters."

// Options are the values offered by the country and year selectors.
type Options struct {
	Countries []string `json:"countries"`
	Years     []int    `json:"years"`
}

// SelectionView is everything the dashboard tab shows for one (country, year).
// When Found is false every view pointer is nil and Notice explains why.
type SelectionView struct {
	Country        string                   `json:"country"`
	Year           int                      `json:"year"`
	Found          bool                     `json:"found"`
	Notice         string                   `json:"notice,omitempty"`
	Record         *models.UsageRecord      `json:"record,omitempty"`
	Gauge          *insights.Gauge          `json:"gauge,omitempty"`
	Prediction     *insights.Prediction     `json:"prediction,omitempty"`
	Breakdown      *insights.Breakdown      `json:"breakdown,omitempty"`
	Recommendation *insights.Recommendation `json:"recommendation,omitempty"`
	ReportFile     string                   `json:"report_file,omitempty"`
}

type TrendView struct {
	Country string                 `json:"country"`
	Found   bool                   `json:"found"`
	Notice  string                 `json:"notice,omitempty"`
	Points  []insights.SeriesPoint `json:"points"`
}

type Dashboard struct {
	table     *dataset.Table
	tips      insights.Tips
	clock     clockwork.Clock
	startedAt time.Time
	logger    *slog.Logger
}

type Option func(*Dashboard)

func WithClock(clock clockwork.Clock) Option {
	return func(d *Dashboard) { d.clock = clock }
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dashboard) { d.logger = logger }
}

func NewDashboard(table *dataset.Table, opts ...Option) *Dashboard {
	d := &Dashboard{
		table:  table,
		tips:   insights.StaticTips(),
		clock:  clockwork.NewRealClock(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.startedAt = d.clock.Now()
	return d
}

func (d *Dashboard) Table() *dataset.Table {
	return d.table
}

func (d *Dashboard) Now() time.Time {
	return d.clock.Now()
}

func (d *Dashboard) Options() Options {
	return Options{
		Countries: d.table.Countries(),
		Years:     d.table.Years(),
	}
}

// DefaultSelection is the first country and first year offered by the
// selectors. ok is false for an empty table.
func (d *Dashboard) DefaultSelection() (country string, year int, ok bool) {
	countries := d.table.Countries()
	years := d.table.Years()
	if len(countries) == 0 || len(years) == 0 {
		return "", 0, false
	}
	return countries[0], years[0], true
}

// Select builds the dashboard views for one (country, year).
func (d *Dashboard) Select(country string, year int) SelectionView {
	view := SelectionView{Country: country, Year: year}

	rec, ok := d.table.ByKey(country, year)
	if !ok {
		view.Notice = NoDataNotice
		d.logger.Debug("empty selection", "country", country, "year", year)
		return view
	}

	gauge := insights.NewGauge(rec.WaterScore)
	prediction := insights.NewPrediction(rec.WaterScore, rec.PredictedScore)
	breakdown := insights.NewBreakdown(rec)
	recommendation := insights.Recommend(rec.WaterScore)

	view.Found = true
	view.Record = &rec
	view.Gauge = &gauge
	view.Prediction = &prediction
	view.Breakdown = &breakdown
	view.Recommendation = &recommendation
	view.ReportFile = dataset.ReportFilename(rec.Country, rec.Year, "csv")
	return view
}

// Trend builds the time-series view for one country.
func (d *Dashboard) Trend(country string) TrendView {
	series := d.table.BySeries(country)
	view := TrendView{
		Country: country,
		Found:   len(series) > 0,
		Points:  insights.SeriesLabels(series),
	}
	if !view.Found {
		view.Notice = NoDataNotice
	}
	return view
}

// Anomalies projects the outlier rows onto the anomaly table columns.
func (d *Dashboard) Anomalies() []models.AnomalyRow {
	anomalies := d.table.ByAnomaly()
	rows := make([]models.AnomalyRow, 0, len(anomalies))
	for _, rec := range anomalies {
		rows = append(rows, models.AnomalyRow{
			Country:              rec.Country,
			Year:                 rec.Year,
			PerCapitaUse:         rec.PerCapitaUse,
			GroundwaterDepletion: rec.GroundwaterDepletion,
			WaterScore:           rec.WaterScore,
		})
	}
	return rows
}

func (d *Dashboard) Tips() insights.Tips {
	return d.tips
}

// Report returns the subset exported for a (country, year) selection. ok is
// false when nothing matches, in which case no file should be produced.
func (d *Dashboard) Report(country string, year int) ([]models.UsageRecord, bool) {
	rec, ok := d.table.ByKey(country, year)
	if !ok {
		return nil, false
	}
	return []models.UsageRecord{rec}, true
}

// Stats is a monitoring summary of the loaded dataset.
func (d *Dashboard) Stats() map[string]any {
	return map[string]any{
		"source":         d.table.Source(),
		"record_count":   d.table.Len(),
		"skipped_rows":   len(d.table.Skipped()),
		"duplicate_keys": d.table.Duplicates(),
		"countries":      len(d.table.Countries()),
		"years":          len(d.table.Years()),
		"anomalies":      len(d.table.ByAnomaly()),
		"loaded_at":      d.table.LoadedAt(),
		"uptime":         d.clock.Since(d.startedAt).String(),
	}
}
