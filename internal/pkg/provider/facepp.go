package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/google/uuid"

	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/clients/facepp_client"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/model/face_model"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/model/facepp_model"
)

const (
	// Face++ filters detections server-side via the forwarded threshold and
	// reports no per-face detection confidence, so every returned face gets
	// this fixed value.
	faceppFixedConfidence = 100

	// Face++ reports gender without a confidence; this stand-in keeps the
	// canonical field populated.
	faceppGenderConfidence = 90
)

// FacePPAPI is the slice of the Face++ client the adapter needs.
type FacePPAPI interface {
	Detect(ctx context.Context, image []byte, confidenceThreshold float64) ([]byte, error)
}

// FacePPAdapter normalizes Face++ detect responses.
type FacePPAdapter struct {
	client FacePPAPI
}

func NewFacePPAdapter(client FacePPAPI) *FacePPAdapter {
	return &FacePPAdapter{client: client}
}

func (a *FacePPAdapter) Name() Name {
	return FacePP
}

// Detect runs the remote call and normalizes the response body. The body is
// kept verbatim as the raw payload.
func (a *FacePPAdapter) Detect(ctx context.Context, image []byte, confidenceThreshold float64) (*Detection, error) {
	body, err := a.client.Detect(ctx, image, confidenceThreshold)
	if err != nil {
		return nil, classifyFacePPError(err)
	}

	faces, err := a.Normalize(body, confidenceThreshold)
	if err != nil {
		return nil, err
	}

	return &Detection{Faces: faces, Raw: body}, nil
}

// Normalize decodes a Face++ detect body. The confidence threshold is not
// applied here: filtering already happened server-side, so every face in the
// payload is kept.
func (a *FacePPAdapter) Normalize(payload []byte, confidenceThreshold float64) ([]face_model.DetectedFace, error) {
	var resp facepp_model.DetectResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if resp.ErrorMessage != "" {
		return nil, classifyFacePPMessage(resp.ErrorMessage)
	}

	faces := make([]face_model.DetectedFace, 0, len(resp.Faces))
	for _, f := range resp.Faces {
		faces = append(faces, normalizeFacePPFace(f))
	}

	return faces, nil
}

func normalizeFacePPFace(f facepp_model.Face) face_model.DetectedFace {
	face := face_model.DetectedFace{
		ID:         f.FaceToken,
		Confidence: faceppFixedConfidence,
		// The vendor contract documents face_rectangle as percentages of the
		// image, hence the division into unit-square coordinates.
		BoundingBox: face_model.BoundingBox{
			Left:   f.FaceRectangle.Left / 100,
			Top:    f.FaceRectangle.Top / 100,
			Width:  f.FaceRectangle.Width / 100,
			Height: f.FaceRectangle.Height / 100,
		},
	}
	if face.ID == "" {
		face.ID = uuid.NewString()
	}

	attrs := f.Attributes
	if attrs == nil {
		return face
	}

	if attrs.Age != nil {
		low := attrs.Age.Value - 5
		if low < 0 {
			low = 0
		}
		face.AgeRange = &face_model.AgeRange{Low: low, High: attrs.Age.Value + 5}
	}

	if attrs.Gender != nil {
		face.Gender = &face_model.Gender{
			Value:      faceppGenderValue(attrs.Gender.Value),
			Confidence: faceppGenderConfidence,
		}
	}

	if attrs.Emotion != nil {
		face.Emotions = emotionsFromScores(attrs.Emotion)
	}

	if attrs.Smile != nil {
		face.Smile = &face_model.Attribute{
			Value:      attrs.Smile.Value > 50,
			Confidence: attrs.Smile.Value,
		}
	}

	if attrs.EyeStatus != nil {
		face.EyesOpen = eyesOpenAttribute(attrs.EyeStatus)
	}

	if attrs.MouthStatus != nil {
		face.MouthOpen = &face_model.Attribute{
			Value:      attrs.MouthStatus.Open > 50,
			Confidence: attrs.MouthStatus.Open,
		}
	}

	if attrs.Glass != nil {
		face.Eyeglasses = glassAttribute(attrs.Glass.Value == "Normal")
		face.Sunglasses = glassAttribute(attrs.Glass.Value == "Dark")
	}

	if attrs.HeadPose != nil {
		face.Pose = &face_model.Pose{
			Roll:  attrs.HeadPose.RollAngle,
			Yaw:   attrs.HeadPose.YawAngle,
			Pitch: attrs.HeadPose.PitchAngle,
		}
	}

	return face
}

func faceppGenderValue(v string) string {
	switch v {
	case "Male":
		return face_model.GenderMale
	case "Female":
		return face_model.GenderFemale
	}
	return face_model.GenderUnknown
}

// emotionsFromScores carries the seven-bucket vector over unchanged, mapping
// only the bucket names. Neutral becomes CALM.
func emotionsFromScores(e *facepp_model.EmotionScores) []face_model.Emotion {
	return []face_model.Emotion{
		{Type: face_model.EmotionAngry, Confidence: e.Anger},
		{Type: face_model.EmotionDisgusted, Confidence: e.Disgust},
		{Type: face_model.EmotionFear, Confidence: e.Fear},
		{Type: face_model.EmotionHappy, Confidence: e.Happiness},
		{Type: face_model.EmotionCalm, Confidence: e.Neutral},
		{Type: face_model.EmotionSad, Confidence: e.Sadness},
		{Type: face_model.EmotionSurprised, Confidence: e.Surprise},
	}
}

// eyesOpenAttribute reduces the per-eye distributions to one boolean: both
// eyes open with more than 50 points of open mass each. The confidence is
// the two-eye average of that mass.
func eyesOpenAttribute(s *facepp_model.EyeStatus) *face_model.Attribute {
	left := s.LeftEye.NormalGlassEyeOpen + s.LeftEye.NoGlassEyeOpen
	right := s.RightEye.NormalGlassEyeOpen + s.RightEye.NoGlassEyeOpen

	return &face_model.Attribute{
		Value:      left > 50 && right > 50,
		Confidence: (left + right) / 2,
	}
}

func glassAttribute(present bool) *face_model.Attribute {
	confidence := 10.0
	if present {
		confidence = 90.0
	}
	return &face_model.Attribute{Value: present, Confidence: confidence}
}

// classifyFacePPError maps transport and HTTP failures onto the shared
// taxonomy. Face++ explains itself in the body's error_message, so the body
// of a failed request is parsed too.
func classifyFacePPError(err error) error {
	var apiErr *facepp_client.APIError
	if errors.As(err, &apiErr) {
		var resp facepp_model.DetectResponse
		if jsonErr := json.Unmarshal(apiErr.Body, &resp); jsonErr == nil && resp.ErrorMessage != "" {
			return classifyFacePPMessage(resp.ErrorMessage)
		}
		if apiErr.StatusCode >= 500 {
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		return fmt.Errorf("face++: %w", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}

	return fmt.Errorf("face++: %w", err)
}

// classifyFacePPMessage maps the vendor's error_message strings. Unknown
// messages pass through unclassified but never silently.
func classifyFacePPMessage(msg string) error {
	switch {
	case strings.Contains(msg, "AUTHENTICATION_ERROR"), strings.Contains(msg, "AUTHORIZATION_ERROR"), strings.Contains(msg, "INSUFFICIENT_PERMISSION"):
		return fmt.Errorf("%w: %s", ErrAuth, msg)
	case strings.Contains(msg, "IMAGE_ERROR_UNSUPPORTED_FORMAT"), strings.Contains(msg, "INVALID_IMAGE_SIZE"), strings.Contains(msg, "IMAGE_FILE_TOO_LARGE"), strings.Contains(msg, "IMAGE_DOWNLOAD_TIMEOUT"):
		return fmt.Errorf("%w: %s", ErrBadImage, msg)
	case strings.Contains(msg, "CONCURRENCY_LIMIT_EXCEEDED"), strings.Contains(msg, "RATE_LIMIT_EXCEEDED"), strings.Contains(msg, "INTERNAL_ERROR"):
		return fmt.Errorf("%w: %s", ErrTransient, msg)
	}
	return fmt.Errorf("face++: %s", msg)
}
