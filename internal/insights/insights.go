// Package insights turns usage records into presentation-ready values: gauge
// bands, prediction accuracy tiers, usage breakdowns, risk tiers and trend
// labels. Every function is pure so panels can be tested without rendering.
package insights

import (
	"fmt"
	"math"

	"ecodrops-dashboard/internal/models"
)

const (
	ScoreMin = 0.0
	ScoreMax = 100.0

	gaugeMediumFrom = 40.0
	gaugeHighFrom   = 70.0

	accurateMaxDelta   = 5.0
	acceptableMaxDelta = 15.0

	mediumRiskFrom  = 50.0
	sustainableFrom = 80.0
)

// Tone selects the visual style of a message widget.
type Tone string

const (
	ToneInfo    Tone = "info"
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneError   Tone = "error"
)

// Band is a display band of the efficiency gauge.
type Band string

const (
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

// GaugeBand maps a score to [0,40) low, [40,70) medium, [70,100] high.
func GaugeBand(score float64) Band {
	switch {
	case score < gaugeMediumFrom:
		return BandLow
	case score < gaugeHighFrom:
		return BandMedium
	default:
		return BandHigh
	}
}

type Gauge struct {
	Value float64 `json:"value"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Band  Band    `json:"band"`
	Label string  `json:"label"`
}

func NewGauge(score float64) Gauge {
	return Gauge{
		Value: score,
		Min:   ScoreMin,
		Max:   ScoreMax,
		Band:  GaugeBand(score),
		Label: ScoreLabel(score),
	}
}

// ScoreLabel renders a score as a whole-number metric, e.g. "72/100".
// The fractional part is truncated, not rounded.
func ScoreLabel(score float64) string {
	return fmt.Sprintf("%d/100", int(score))
}

// PredictionTier buckets how close the predicted score is to the actual one.
type PredictionTier string

const (
	TierAccurate    PredictionTier = "accurate"
	TierAcceptable  PredictionTier = "acceptable"
	TierNeedsTuning PredictionTier = "needs tuning"
)

// PredictionDelta is the absolute difference between actual and predicted.
func PredictionDelta(actual, predicted float64) float64 {
	return math.Abs(actual - predicted)
}

// ClassifyPrediction buckets a non-negative delta: <=5 accurate, <=15
// acceptable, otherwise needs tuning.
func ClassifyPrediction(delta float64) PredictionTier {
	switch {
	case delta <= accurateMaxDelta:
		return TierAccurate
	case delta <= acceptableMaxDelta:
		return TierAcceptable
	default:
		return TierNeedsTuning
	}
}

func (t PredictionTier) Tone() Tone {
	switch t {
	case TierAccurate:
		return ToneSuccess
	case TierAcceptable:
		return ToneWarning
	default:
		return ToneError
	}
}

func (t PredictionTier) Message() string {
	switch t {
	case TierAccurate:
		return "Model prediction is very accurate!"
	case TierAcceptable:
		return "Acceptable prediction, with some deviation."
	default:
		return "Model needs tuning: the prediction is quite different."
	}
}

type Prediction struct {
	Actual         float64        `json:"actual"`
	Predicted      float64        `json:"predicted"`
	Delta          float64        `json:"delta"`
	ActualLabel    string         `json:"actual_label"`
	PredictedLabel string         `json:"predicted_label"`
	Tier           PredictionTier `json:"tier"`
	Tone           Tone           `json:"tone"`
	Message        string         `json:"message"`
}

func NewPrediction(actual, predicted float64) Prediction {
	delta := PredictionDelta(actual, predicted)
	tier := ClassifyPrediction(delta)
	return Prediction{
		Actual:         actual,
		Predicted:      predicted,
		Delta:          delta,
		ActualLabel:    ScoreLabel(actual),
		PredictedLabel: ScoreLabel(predicted),
		Tier:           tier,
		Tone:           tier.Tone(),
		Message:        tier.Message(),
	}
}

// Share is one labelled slice of the usage breakdown.
type Share struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Breakdown holds the usage percentages verbatim; they are not normalized even
// when they do not sum to 100.
type Breakdown struct {
	Agricultural float64 `json:"agricultural"`
	Industrial   float64 `json:"industrial"`
	Household    float64 `json:"household"`
}

func NewBreakdown(rec models.UsageRecord) Breakdown {
	return Breakdown{
		Agricultural: rec.AgriculturalUse,
		Industrial:   rec.IndustrialUse,
		Household:    rec.HouseholdUse,
	}
}

// Shares lists the breakdown in display order for bar and pie charts.
func (b Breakdown) Shares() []Share {
	return []Share{
		{Label: "Agricultural", Value: b.Agricultural},
		{Label: "Industrial", Value: b.Industrial},
		{Label: "Household", Value: b.Household},
	}
}

func (b Breakdown) Total() float64 {
	return b.Agricultural + b.Industrial + b.Household
}

// RiskTier buckets absolute sustainability risk from the actual score.
type RiskTier string

const (
	RiskHighStress  RiskTier = "high stress"
	RiskMedium      RiskTier = "medium risk"
	RiskSustainable RiskTier = "sustainable"
)

// ClassifyRisk maps a score to <50 high stress, [50,80) medium risk, >=80
// sustainable.
func ClassifyRisk(score float64) RiskTier {
	switch {
	case score < mediumRiskFrom:
		return RiskHighStress
	case score < sustainableFrom:
		return RiskMedium
	default:
		return RiskSustainable
	}
}

func (r RiskTier) Tone() Tone {
	switch r {
	case RiskHighStress:
		return ToneError
	case RiskMedium:
		return ToneWarning
	default:
		return ToneSuccess
	}
}

func (r RiskTier) Message() string {
	switch r {
	case RiskHighStress:
		return "High water stress! Implement stricter water-saving measures."
	case RiskMedium:
		return "Medium risk: consider awareness campaigns."
	default:
		return "Sustainable water use detected. Keep monitoring!"
	}
}

type Recommendation struct {
	Tier    RiskTier `json:"tier"`
	Tone    Tone     `json:"tone"`
	Message string   `json:"message"`
}

func Recommend(score float64) Recommendation {
	tier := ClassifyRisk(score)
	return Recommendation{
		Tier:    tier,
		Tone:    tier.Tone(),
		Message: tier.Message(),
	}
}

// SeriesPoint is one labelled point of a country's trend line.
type SeriesPoint struct {
	Year  int     `json:"year"`
	Score float64 `json:"score"`
	Label string  `json:"label"`
}

// SeriesLabels labels each point with its score rounded to one decimal. The
// input order is kept; callers pass a year-ordered series.
func SeriesLabels(series []models.UsageRecord) []SeriesPoint {
	points := make([]SeriesPoint, 0, len(series))
	for _, rec := range series {
		points = append(points, SeriesPoint{
			Year:  rec.Year,
			Score: rec.WaterScore,
			Label: fmt.Sprintf("%.1f", rec.WaterScore),
		})
	}
	return points
}
