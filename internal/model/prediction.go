package model

import "time"

// Prediction is one stored output of the fuzzy model. Rows are append-only;
// every successful POST /predict adds one.
type Prediction struct {
	ID              int64     `json:"id"`
	FirebaseUID     string    `json:"firebase_uid"`
	PredictedValues float64   `json:"predicted_values"`
	CreatedAt       time.Time `json:"-"`
}
