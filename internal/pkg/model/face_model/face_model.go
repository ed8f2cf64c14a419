// Package face_model holds the provider-independent face and frame analysis
// models. Both detection providers normalize into these types, so everything
// downstream of the adapters is vendor-agnostic.
package face_model

import (
	"encoding/json"
	"time"
)

// EmotionType is the canonical emotion vocabulary shared by all providers.
type EmotionType string

const (
	EmotionHappy     EmotionType = "HAPPY"
	EmotionSad       EmotionType = "SAD"
	EmotionAngry     EmotionType = "ANGRY"
	EmotionCalm      EmotionType = "CALM"
	EmotionSurprised EmotionType = "SURPRISED"
	EmotionDisgusted EmotionType = "DISGUSTED"
	EmotionFear      EmotionType = "FEAR"
	EmotionConfused  EmotionType = "CONFUSED"
	EmotionUnknown   EmotionType = "UNKNOWN"
)

// Canonical gender values.
const (
	GenderMale    = "Male"
	GenderFemale  = "Female"
	GenderUnknown = "Unknown"
)

// BoundingBox locates a face on the unit square, origin at the top-left of
// the frame. All fields are fractions of the frame dimensions in [0, 1].
type BoundingBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// AgeRange is the estimated age interval in years, Low <= High.
type AgeRange struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// Gender holds the detected gender and the provider's confidence in it.
type Gender struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Emotion is one entry of a face's emotion vector.
type Emotion struct {
	Type       EmotionType `json:"type"`
	Confidence float64     `json:"confidence"`
}

// Attribute is a boolean facial attribute with detection confidence 0-100.
type Attribute struct {
	Value      bool    `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Pose holds the head orientation angles in degrees.
type Pose struct {
	Roll  float64 `json:"roll"`
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

// Quality holds image quality metrics on the provider's own scale. Values
// are not comparable across providers.
type Quality struct {
	Brightness float64 `json:"brightness"`
	Sharpness  float64 `json:"sharpness"`
}

// DetectedFace is the canonical representation of one detected face.
// Optional attributes stay nil when the provider did not report them, which
// is distinct from a reported false or zero.
type DetectedFace struct {
	ID          string      `json:"id"`
	BoundingBox BoundingBox `json:"boundingBox"`
	Confidence  float64     `json:"confidence"`
	AgeRange    *AgeRange   `json:"ageRange,omitempty"`
	Gender      *Gender     `json:"gender,omitempty"`
	Emotions    []Emotion   `json:"emotions,omitempty"`
	Smile       *Attribute  `json:"smile,omitempty"`
	EyesOpen    *Attribute  `json:"eyesOpen,omitempty"`
	MouthOpen   *Attribute  `json:"mouthOpen,omitempty"`
	Eyeglasses  *Attribute  `json:"eyeglasses,omitempty"`
	Sunglasses  *Attribute  `json:"sunglasses,omitempty"`
	Beard       *Attribute  `json:"beard,omitempty"`
	Mustache    *Attribute  `json:"mustache,omitempty"`
	Pose        *Pose       `json:"pose,omitempty"`
	Quality     *Quality    `json:"quality,omitempty"`
}

// AggregateStats holds the frame-level demographic and emotion statistics.
// Every field is nil when no face in the frame carried the underlying
// attribute.
type AggregateStats struct {
	AverageAge               *float64     `json:"averageAge,omitempty"`
	MalePercentage           *int         `json:"malePercentage,omitempty"`
	FemalePercentage         *int         `json:"femalePercentage,omitempty"`
	PrimaryEmotion           *EmotionType `json:"primaryEmotion,omitempty"`
	PrimaryEmotionPercentage *int         `json:"primaryEmotionPercentage,omitempty"`
}

// Engagement is the heuristic crowd engagement estimate for one frame.
type Engagement struct {
	Score         int     `json:"score"`
	AttentionTime float64 `json:"attentionTime"`
}

// FrameAnalysis is the complete result for one analyzed frame. It is built
// fresh for every request and never mutated after construction.
type FrameAnalysis struct {
	Faces       []DetectedFace `json:"faces"`
	PeopleCount int            `json:"peopleCount"`
	AggregateStats
	EngagementScore *int      `json:"engagementScore,omitempty"`
	AttentionTime   *float64  `json:"attentionTime,omitempty"`
	Timestamp       time.Time `json:"timestamp"`

	// RawProviderResponse is the untouched vendor payload, kept for audit
	// only. No analysis code reads it back.
	RawProviderResponse json.RawMessage `json:"rawProviderResponse,omitempty"`
}

// Capture is one stored frame analysis in the capture history.
type Capture struct {
	Id       int    `json:"id"`
	Provider string `json:"provider"`
	FrameAnalysis
}

// CaptureExport is the anonymized export row: aggregates only, no per-face
// data and no raw provider payload.
type CaptureExport struct {
	Id          int       `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Provider    string    `json:"provider"`
	PeopleCount int       `json:"peopleCount"`
	AggregateStats
	EngagementScore *int     `json:"engagementScore,omitempty"`
	AttentionTime   *float64 `json:"attentionTime,omitempty"`
}
