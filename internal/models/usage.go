package models

// Column headers of the usage dataset, in export order.
const (
	ColCountry              = "Country"
	ColYear                 = "Year"
	ColWaterScore           = "Water Score"
	ColPredictedScore       = "Predicted Score"
	ColAgriculturalUse      = "Agricultural Water Use (%)"
	ColIndustrialUse        = "Industrial Water Use (%)"
	ColHouseholdUse         = "Household Water Use (%)"
	ColPerCapitaUse         = "Per Capita Water Use (Liters per Day)"
	ColGroundwaterDepletion = "Groundwater Depletion Rate (%)"
	ColAnomaly              = "Anomaly"
	ColSustainabilityTip    = "Sustainability Tip"
)

// Columns lists every required column in canonical order.
var Columns = []string{
	ColCountry,
	ColYear,
	ColWaterScore,
	ColPredictedScore,
	ColAgriculturalUse,
	ColIndustrialUse,
	ColHouseholdUse,
	ColPerCapitaUse,
	ColGroundwaterDepletion,
	ColAnomaly,
	ColSustainabilityTip,
}

const (
	AnomalyNormal  = 1
	AnomalyOutlier = -1
)

// UsageRecord is one (Country, Year) row of precomputed water-usage metrics.
type UsageRecord struct {
	Country              string  `json:"country"`
	Year                 int     `json:"year"`
	WaterScore           float64 `json:"water_score"`
	PredictedScore       float64 `json:"predicted_score"`
	AgriculturalUse      float64 `json:"agricultural_use"`
	IndustrialUse        float64 `json:"industrial_use"`
	HouseholdUse         float64 `json:"household_use"`
	PerCapitaUse         float64 `json:"per_capita_use"`
	GroundwaterDepletion float64 `json:"groundwater_depletion"`
	Anomaly              int     `json:"anomaly"`
	SustainabilityTip    string  `json:"sustainability_tip"`
}

func (r UsageRecord) IsAnomaly() bool {
	return r.Anomaly == AnomalyOutlier
}

// AnomalyRow is the projection shown in the global anomaly table.
type AnomalyRow struct {
	Country              string  `json:"country"`
	Year                 int     `json:"year"`
	PerCapitaUse         float64 `json:"per_capita_use"`
	GroundwaterDepletion float64 `json:"groundwater_depletion"`
	WaterScore           float64 `json:"water_score"`
}
