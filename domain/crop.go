package domain

// SoilSample carries the agronomic parameters submitted by a farmer for a
// crop suggestion. N, P and K are mandatory but 0 is a valid reading, so
// they are pointers and only absence fails validation; the rest default to
// the values the prediction model was calibrated with.
type SoilSample struct {
	Nitrogen    *float64 `json:"nitrogen" validate:"required"`
	Phosphorus  *float64 `json:"phosphorus" validate:"required"`
	Potassium   *float64 `json:"potassium" validate:"required"`
	Temperature *float64 `json:"temperature,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
	PH          *float64 `json:"ph,omitempty"`
	Rainfall    *float64 `json:"rainfall,omitempty"`
	TopK        int      `json:"top_k,omitempty" validate:"omitempty,min=1,max=10"`
}

// CropSuggestion is the prediction service's ranked answer.
type CropSuggestion struct {
	Predictions   []string  `json:"predictions"`
	Probabilities []float64 `json:"probabilities,omitempty"`
}
