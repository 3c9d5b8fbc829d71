package domain

import "time"

// Parameters is the soil/weather input bag submitted for a recommendation.
// Soil metadata is optional; the numeric readings are required. Weather-derived
// fields may be zero when no weather snapshot is available.
type Parameters struct {
	Nitrogen    float64 `json:"nitrogen" validate:"gte=0,lte=500"`
	Phosphorus  float64 `json:"phosphorus" validate:"gte=0,lte=500"`
	Potassium   float64 `json:"potassium" validate:"gte=0,lte=500"`
	Temperature float64 `json:"temperature" validate:"gte=-50,lte=60"`
	Humidity    float64 `json:"humidity" validate:"gte=0,lte=100"`
	PH          float64 `json:"ph" validate:"gte=0,lte=14"`
	Rainfall    float64 `json:"rainfall" validate:"gte=0"`

	SoilName string `json:"soilName,omitempty"`
	// SoilImageURI is decoded from history records for display only; the
	// client never uploads images.
	SoilImageURI string `json:"soilImageUri,omitempty"`
}

// Prediction is one stored crop recommendation. Records are immutable once
// created; the manager holds them newest-first.
type Prediction struct {
	ID                string
	Crop              string
	ConfidencePercent float64
	CreatedDate       time.Time
	Parameters        Parameters
}
