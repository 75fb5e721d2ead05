package insights

// Tip is a static informational note shown on the tips tab.
type Tip struct {
	Tone Tone   `json:"tone"`
	Text string `json:"text"`
}

// ModelNotes describes the upstream model that produced the predicted scores.
type ModelNotes struct {
	Summary string   `json:"summary"`
	Inputs  []string `json:"inputs"`
	Uses    []string `json:"uses"`
}

type Tips struct {
	Headline string     `json:"headline"`
	Items    []Tip      `json:"items"`
	Model    ModelNotes `json:"model"`
}

// StaticTips returns the fixed content of the tips panel.
func StaticTips() Tips {
	return Tips{
		Headline: "How AI and ML support sustainability",
		Items: []Tip{
			{Tone: ToneInfo, Text: "Anomaly detection models such as Isolation Forest flag abnormal water usage, pointing at regions with high wastage or stress."},
			{Tone: ToneSuccess, Text: "Smart irrigation driven by weather forecasts and soil moisture readings cuts agricultural water use."},
			{Tone: ToneWarning, Text: "Demand forecasts give policymakers time to act before shortages happen."},
			{Tone: ToneInfo, Text: "Dashboards like this one make climate data readable for policymakers and citizens."},
			{Tone: ToneSuccess, Text: "Environmental datasets help plan smart infrastructure and greener cities."},
		},
		Model: ModelNotes{
			Summary: "Predicted scores come from a feedforward neural network trained on real-world water usage data. It predicts the water efficiency score of a region for a given year.",
			Inputs: []string{
				"Per Capita Water Use",
				"Groundwater Depletion Rate",
				"Agricultural Water Use",
				"Industrial Water Use",
				"Household Water Use",
			},
			Uses: []string{
				"Create sustainable water policies",
				"Monitor regions at risk",
				"Promote green infrastructure and awareness",
			},
		},
	}
}
