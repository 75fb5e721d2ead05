// Package charts renders dashboard figures as inline SVG.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"ecodrops-dashboard/internal/insights"
)

const (
	breakdownWidth  = 480
	breakdownHeight = 320
	trendWidth      = 720
	trendHeight     = 360
)

// ErrNoData is returned when a figure has nothing meaningful to draw.
var ErrNoData = errors.New("charts: no data to plot")

var shareColors = []drawing.Color{
	drawing.ColorFromHex("2e7d32"),
	drawing.ColorFromHex("1565c0"),
	drawing.ColorFromHex("f9a825"),
}

var trendColor = drawing.ColorFromHex("0277bd")

func shareStyle(i int) chart.Style {
	col := shareColors[i%len(shareColors)]
	return chart.Style{
		FillColor:   col,
		StrokeColor: col,
		StrokeWidth: 0,
	}
}

// text escapes s for go-chart, which writes labels into the SVG verbatim.
func text(s string) string {
	return html.EscapeString(s)
}

type renderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func render(r renderable) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(chart.SVG, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BreakdownBar draws the three usage shares as bars on a 0..100 axis. Values
// are plotted as stored, without normalization.
func BreakdownBar(b insights.Breakdown) (string, error) {
	shares := b.Shares()
	bars := make([]chart.Value, 0, len(shares))
	top := insights.ScoreMax
	for i, s := range shares {
		bars = append(bars, chart.Value{Label: text(s.Label), Value: s.Value, Style: shareStyle(i)})
		if s.Value > top {
			top = s.Value
		}
	}

	bc := chart.BarChart{
		Title:    "Water Usage by Sector (%)",
		Width:    breakdownWidth,
		Height:   breakdownHeight,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: top},
		},
		Bars: bars,
	}
	return render(bc)
}

// BreakdownPie draws the shares as a pie, each slice labelled with its share
// of the triple's total. A breakdown with a non-positive
// total or a negative share cannot be drawn and yields ErrNoData.
func BreakdownPie(b insights.Breakdown) (string, error) {
	shares := b.Shares()
	total := b.Total()
	if total <= 0 {
		return "", ErrNoData
	}
	values := make([]chart.Value, 0, len(shares))
	for i, s := range shares {
		if s.Value < 0 {
			return "", ErrNoData
		}
		values = append(values, chart.Value{
			Label: text(fmt.Sprintf("%s %.1f%%", s.Label, s.Value/total*100)),
			Value: s.Value,
			Style: shareStyle(i),
		})
	}

	pc := chart.PieChart{
		Title:  "Usage Share",
		Width:  breakdownHeight,
		Height: breakdownHeight,
		Values: values,
	}
	return render(pc)
}

// TrendLine draws a country's score by year with each point annotated by its
// label.
func TrendLine(country string, points []insights.SeriesPoint) (string, error) {
	if len(points) == 0 {
		return "", ErrNoData
	}

	xs := make([]float64, 0, len(points))
	ys := make([]float64, 0, len(points))
	annotations := make([]chart.Value2, 0, len(points))
	ticks := make([]chart.Tick, 0, len(points)+2)
	for _, p := range points {
		x := float64(p.Year)
		xs = append(xs, x)
		ys = append(ys, p.Score)
		annotations = append(annotations, chart.Value2{XValue: x, YValue: p.Score, Label: text(p.Label)})
		ticks = append(ticks, chart.Tick{Value: x, Label: fmt.Sprintf("%d", p.Year)})
	}

	// Explicit ticks define the X range, so unlabelled ticks half a year
	// outside the data keep a single year drawable and edge labels inside
	// the plot.
	lo, hi := xs[0]-0.5, xs[len(xs)-1]+0.5
	ticks = append([]chart.Tick{{Value: lo}}, append(ticks, chart.Tick{Value: hi})...)
	xRange := &chart.ContinuousRange{Min: lo, Max: hi}

	ch := chart.Chart{
		Title:  text(fmt.Sprintf("%s Water Efficiency Trend", country)),
		Width:  trendWidth,
		Height: trendHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 24, Bottom: 16},
		},
		XAxis: chart.XAxis{Name: "Year", Range: xRange, Ticks: ticks},
		YAxis: chart.YAxis{
			Name:  "Water Score",
			Range: &chart.ContinuousRange{Min: insights.ScoreMin, Max: insights.ScoreMax},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Water Score",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: trendColor,
					StrokeWidth: 2,
					DotColor:    trendColor,
					DotWidth:    4,
				},
			},
			chart.AnnotationSeries{Annotations: annotations},
		},
	}
	return render(ch)
}
