package charts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecodrops-dashboard/internal/insights"
)

func TestBreakdownBar(t *testing.T) {
	svg, err := BreakdownBar(insights.Breakdown{Agricultural: 60, Industrial: 25, Household: 15})

	require.NoError(t, err)
	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, "Agricultural")
	assert.Contains(t, svg, "Household")
}

func TestBreakdownBarAboveHundred(t *testing.T) {
	svg, err := BreakdownBar(insights.Breakdown{Agricultural: 120, Industrial: 5, Household: 5})

	require.NoError(t, err)
	assert.Contains(t, svg, "<svg")
}

func TestBreakdownPie(t *testing.T) {
	svg, err := BreakdownPie(insights.Breakdown{Agricultural: 60, Industrial: 25, Household: 15})

	require.NoError(t, err)
	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, "Agricultural 60.0%")
	assert.Contains(t, svg, "Household 15.0%")
}

func TestBreakdownPieNoData(t *testing.T) {
	tests := []struct {
		name string
		b    insights.Breakdown
	}{
		{"all zero", insights.Breakdown{}},
		{"negative share", insights.Breakdown{Agricultural: 80, Industrial: -5, Household: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BreakdownPie(tt.b)
			assert.ErrorIs(t, err, ErrNoData)
		})
	}
}

func TestTrendLine(t *testing.T) {
	points := []insights.SeriesPoint{
		{Year: 2019, Score: 70, Label: "70.0"},
		{Year: 2020, Score: 72, Label: "72.0"},
		{Year: 2021, Score: 74.5, Label: "74.5"},
	}

	svg, err := TrendLine("Brazil", points)

	require.NoError(t, err)
	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, "Brazil Water Efficiency Trend")
	assert.Contains(t, svg, "74.5")
}

func TestTrendLineSinglePoint(t *testing.T) {
	svg, err := TrendLine("Chile", []insights.SeriesPoint{{Year: 2020, Score: 55, Label: "55.0"}})

	require.NoError(t, err)
	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, ">2020<")
	assert.Contains(t, svg, "55.0")
}

func TestTrendLineEscapesText(t *testing.T) {
	points := []insights.SeriesPoint{
		{Year: 2020, Score: 40, Label: "40.0"},
		{Year: 2021, Score: 45, Label: "<b>45.0</b>"},
	}

	svg, err := TrendLine("A&B <script>x</script>", points)

	require.NoError(t, err)
	assert.NotContains(t, svg, "<script>")
	assert.NotContains(t, svg, "<b>")
	assert.Contains(t, svg, "A&amp;B &lt;script&gt;x&lt;/script&gt; Water Efficiency Trend")
	assert.Contains(t, svg, "&lt;b&gt;45.0&lt;/b&gt;")
}

func TestTrendLineEmpty(t *testing.T) {
	_, err := TrendLine("Atlantis", nil)
	assert.ErrorIs(t, err, ErrNoData)
}
