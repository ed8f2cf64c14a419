// Package settings_model holds the runtime configuration model.
package settings_model

// Settings drives the analysis pipeline. The display toggles only control
// what clients should render; detection always requests the full attribute
// set regardless of them.
type Settings struct {
	ActiveProvider         string  `db:"active_provider" json:"activeProvider"`
	ConfidenceThreshold    float64 `db:"confidence_threshold" json:"confidenceThreshold"`
	CaptureIntervalSeconds int     `db:"capture_interval_seconds" json:"captureIntervalSeconds"`
	ShowAge                bool    `db:"show_age" json:"showAge"`
	ShowGender             bool    `db:"show_gender" json:"showGender"`
	ShowEmotions           bool    `db:"show_emotions" json:"showEmotions"`
	ShowEngagement         bool    `db:"show_engagement" json:"showEngagement"`
}
