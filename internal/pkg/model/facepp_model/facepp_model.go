// Package facepp_model holds the wire models of the Face++ detect API.
package facepp_model

// DetectResponse is the body of a Face++ detect reply. ErrorMessage is empty
// on success; Face++ reports failures inside the JSON body even on non-2xx
// statuses.
type DetectResponse struct {
	RequestId    string `json:"request_id"`
	TimeUsed     int    `json:"time_used"`
	ErrorMessage string `json:"error_message"`
	FaceNum      int    `json:"face_num"`
	Faces        []Face `json:"faces"`
}

// Face is one detected face with its optional attribute block. Attributes is
// nil past the vendor's per-call attribute limit.
type Face struct {
	FaceToken     string        `json:"face_token"`
	FaceRectangle FaceRectangle `json:"face_rectangle"`
	Attributes    *Attributes   `json:"attributes"`
}

// FaceRectangle locates the face. The vendor contract documents the values
// as percentages of the image dimensions.
type FaceRectangle struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Attributes groups the per-face attribute blocks requested via
// return_attributes.
type Attributes struct {
	Gender      *GenderAttribute `json:"gender"`
	Age         *AgeAttribute    `json:"age"`
	Smile       *SmileAttribute  `json:"smile"`
	Emotion     *EmotionScores   `json:"emotion"`
	EyeStatus   *EyeStatus       `json:"eyestatus"`
	MouthStatus *MouthStatus     `json:"mouthstatus"`
	Glass       *GlassAttribute  `json:"glass"`
	HeadPose    *HeadPose        `json:"headpose"`
}

// GenderAttribute is "Male" or "Female". Face++ reports no confidence for it.
type GenderAttribute struct {
	Value string `json:"value"`
}

// AgeAttribute is a single age estimate in years, not a range.
type AgeAttribute struct {
	Value int `json:"value"`
}

// SmileAttribute is a smile intensity 0-100 with the vendor's suggested
// decision threshold.
type SmileAttribute struct {
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
}

// EmotionScores is the seven-bucket emotion vector, each value 0-100.
type EmotionScores struct {
	Anger     float64 `json:"anger"`
	Disgust   float64 `json:"disgust"`
	Fear      float64 `json:"fear"`
	Happiness float64 `json:"happiness"`
	Neutral   float64 `json:"neutral"`
	Sadness   float64 `json:"sadness"`
	Surprise  float64 `json:"surprise"`
}

// EyeStatus holds the per-eye state distributions.
type EyeStatus struct {
	LeftEye  EyeStatusDetail `json:"left_eye_status"`
	RightEye EyeStatusDetail `json:"right_eye_status"`
}

// EyeStatusDetail is a probability mass over eye states, each value 0-100.
type EyeStatusDetail struct {
	NormalGlassEyeOpen  float64 `json:"normal_glass_eye_open"`
	NormalGlassEyeClose float64 `json:"normal_glass_eye_close"`
	NoGlassEyeOpen      float64 `json:"no_glass_eye_open"`
	NoGlassEyeClose     float64 `json:"no_glass_eye_close"`
	Occlusion           float64 `json:"occlusion"`
	DarkGlasses         float64 `json:"dark_glasses"`
}

// MouthStatus is a probability mass over mouth states, each value 0-100.
type MouthStatus struct {
	Open                     float64 `json:"open"`
	Close                    float64 `json:"close"`
	OtherOcclusion           float64 `json:"other_occlusion"`
	SurgicalMaskOrRespirator float64 `json:"surgical_mask_or_respirator"`
}

// GlassAttribute is "None", "Normal" or "Dark".
type GlassAttribute struct {
	Value string `json:"value"`
}

// HeadPose holds the head orientation angles in degrees.
type HeadPose struct {
	PitchAngle float64 `json:"pitch_angle"`
	RollAngle  float64 `json:"roll_angle"`
	YawAngle   float64 `json:"yaw_angle"`
}
