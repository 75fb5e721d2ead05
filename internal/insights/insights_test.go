package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ecodrops-dashboard/internal/models"
)

func TestClassifyPrediction(t *testing.T) {
	tests := []struct {
		delta float64
		want  PredictionTier
	}{
		{0, TierAccurate},
		{4, TierAccurate},
		{5, TierAccurate},
		{5.01, TierAcceptable},
		{15, TierAcceptable},
		{15.01, TierNeedsTuning},
		{100, TierNeedsTuning},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyPrediction(tt.delta), "delta=%v", tt.delta)
	}
}

func TestPredictionDelta(t *testing.T) {
	assert.Equal(t, 4.0, PredictionDelta(72, 68))
	assert.Equal(t, 4.0, PredictionDelta(68, 72))
	assert.Equal(t, 0.0, PredictionDelta(50, 50))
}

func TestNewPrediction(t *testing.T) {
	p := NewPrediction(72.9, 50)

	assert.InDelta(t, 22.9, p.Delta, 1e-9)
	assert.Equal(t, TierNeedsTuning, p.Tier)
	assert.Equal(t, ToneError, p.Tone)
	assert.Equal(t, "72/100", p.ActualLabel)
	assert.Equal(t, "50/100", p.PredictedLabel)
	assert.NotEmpty(t, p.Message)
}

func TestPredictionTierTones(t *testing.T) {
	assert.Equal(t, ToneSuccess, TierAccurate.Tone())
	assert.Equal(t, ToneWarning, TierAcceptable.Tone())
	assert.Equal(t, ToneError, TierNeedsTuning.Tone())
}

func TestClassifyRisk(t *testing.T) {
	tests := []struct {
		score float64
		want  RiskTier
	}{
		{0, RiskHighStress},
		{49.99, RiskHighStress},
		{50, RiskMedium},
		{79.99, RiskMedium},
		{80, RiskSustainable},
		{100, RiskSustainable},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyRisk(tt.score), "score=%v", tt.score)
	}
}

func TestRecommend(t *testing.T) {
	r := Recommend(38.2)
	assert.Equal(t, RiskHighStress, r.Tier)
	assert.Equal(t, ToneError, r.Tone)
	assert.Contains(t, r.Message, "High water stress")

	assert.Equal(t, ToneWarning, Recommend(60).Tone)
	assert.Equal(t, ToneSuccess, Recommend(90).Tone)
}

func TestGaugeBand(t *testing.T) {
	tests := []struct {
		score float64
		want  Band
	}{
		{-3, BandLow},
		{0, BandLow},
		{39.99, BandLow},
		{40, BandMedium},
		{69.99, BandMedium},
		{70, BandHigh},
		{100, BandHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GaugeBand(tt.score), "score=%v", tt.score)
	}
}

func TestNewGauge(t *testing.T) {
	g := NewGauge(72)

	assert.Equal(t, 72.0, g.Value)
	assert.Equal(t, 0.0, g.Min)
	assert.Equal(t, 100.0, g.Max)
	assert.Equal(t, BandHigh, g.Band)
	assert.Equal(t, "72/100", g.Label)
}

func TestScoreLabelTruncates(t *testing.T) {
	assert.Equal(t, "72/100", ScoreLabel(72.99))
	assert.Equal(t, "0/100", ScoreLabel(0.5))
	assert.Equal(t, "100/100", ScoreLabel(100))
}

func TestBreakdownVerbatim(t *testing.T) {
	rec := models.UsageRecord{AgriculturalUse: 60, IndustrialUse: 25, HouseholdUse: 10}
	b := NewBreakdown(rec)

	assert.Equal(t, []Share{
		{Label: "Agricultural", Value: 60},
		{Label: "Industrial", Value: 25},
		{Label: "Household", Value: 10},
	}, b.Shares())
	assert.Equal(t, 95.0, b.Total(), "values are not normalized to 100")
}

func TestSeriesLabels(t *testing.T) {
	series := []models.UsageRecord{
		{Year: 2019, WaterScore: 69.96},
		{Year: 2020, WaterScore: 72},
		{Year: 2021, WaterScore: 74.5},
	}

	points := SeriesLabels(series)

	assert.Equal(t, []SeriesPoint{
		{Year: 2019, Score: 69.96, Label: "70.0"},
		{Year: 2020, Score: 72, Label: "72.0"},
		{Year: 2021, Score: 74.5, Label: "74.5"},
	}, points)
	assert.Empty(t, SeriesLabels(nil))
}

func TestBrazil2020Selection(t *testing.T) {
	rec := models.UsageRecord{
		Country:         "Brazil",
		Year:            2020,
		WaterScore:      72,
		PredictedScore:  68,
		AgriculturalUse: 60,
		IndustrialUse:   25,
		HouseholdUse:    15,
		Anomaly:         1,
	}

	assert.Equal(t, 72.0, NewGauge(rec.WaterScore).Value)
	assert.Equal(t, TierAccurate, NewPrediction(rec.WaterScore, rec.PredictedScore).Tier)
	assert.Equal(t, RiskMedium, ClassifyRisk(rec.WaterScore))
	assert.False(t, rec.IsAnomaly())
}

func TestStaticTips(t *testing.T) {
	tips := StaticTips()

	assert.Len(t, tips.Items, 5)
	assert.Len(t, tips.Model.Inputs, 5)
	for _, item := range tips.Items {
		assert.NotEmpty(t, item.Text)
		assert.Contains(t, []Tone{ToneInfo, ToneSuccess, ToneWarning}, item.Tone)
	}
}
