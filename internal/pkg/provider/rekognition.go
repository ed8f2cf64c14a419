package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/model/face_model"
)

// RekognitionAPI is the slice of the Rekognition client the adapter needs.
type RekognitionAPI interface {
	DetectFaces(ctx context.Context, image []byte) (*rekognition.DetectFacesOutput, error)
}

// RekognitionAdapter normalizes AWS Rekognition face details.
type RekognitionAdapter struct {
	client RekognitionAPI
}

func NewRekognitionAdapter(client RekognitionAPI) *RekognitionAdapter {
	return &RekognitionAdapter{client: client}
}

func (a *RekognitionAdapter) Name() Name {
	return AWS
}

// rekognitionPayload is the DetectFaces wire shape. The SDK field names
// match the JSON keys, so the SDK types double as the decode target.
type rekognitionPayload struct {
	FaceDetails []types.FaceDetail `json:"FaceDetails"`
}

// Detect runs DetectFaces and normalizes the result. The raw payload kept on
// the Detection is re-encoded from the SDK output, not the HTTP body, which
// is equivalent for audit purposes.
func (a *RekognitionAdapter) Detect(ctx context.Context, image []byte, confidenceThreshold float64) (*Detection, error) {
	out, err := a.client.DetectFaces(ctx, image)
	if err != nil {
		return nil, classifyRekognitionError(err)
	}

	raw, err := json.Marshal(rekognitionPayload{FaceDetails: out.FaceDetails})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return &Detection{
		Faces: normalizeFaceDetails(out.FaceDetails, confidenceThreshold),
		Raw:   raw,
	}, nil
}

// Normalize decodes a stored DetectFaces payload and maps it to canonical
// faces.
func (a *RekognitionAdapter) Normalize(payload []byte, confidenceThreshold float64) ([]face_model.DetectedFace, error) {
	var parsed rekognitionPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return normalizeFaceDetails(parsed.FaceDetails, confidenceThreshold), nil
}

// normalizeFaceDetails maps face details field by field. Detections below
// the confidence threshold are dropped before any attribute is looked at.
func normalizeFaceDetails(details []types.FaceDetail, confidenceThreshold float64) []face_model.DetectedFace {
	faces := make([]face_model.DetectedFace, 0, len(details))

	for _, fd := range details {
		confidence := float64(aws.ToFloat32(fd.Confidence))
		if confidence < confidenceThreshold {
			continue
		}

		face := face_model.DetectedFace{
			ID:         uuid.NewString(),
			Confidence: confidence,
		}

		if fd.BoundingBox != nil {
			face.BoundingBox = face_model.BoundingBox{
				Left:   float64(aws.ToFloat32(fd.BoundingBox.Left)),
				Top:    float64(aws.ToFloat32(fd.BoundingBox.Top)),
				Width:  float64(aws.ToFloat32(fd.BoundingBox.Width)),
				Height: float64(aws.ToFloat32(fd.BoundingBox.Height)),
			}
		}

		if fd.AgeRange != nil {
			face.AgeRange = &face_model.AgeRange{
				Low:  int(aws.ToInt32(fd.AgeRange.Low)),
				High: int(aws.ToInt32(fd.AgeRange.High)),
			}
		}

		if fd.Gender != nil {
			face.Gender = &face_model.Gender{
				Value:      genderValue(fd.Gender.Value),
				Confidence: float64(aws.ToFloat32(fd.Gender.Confidence)),
			}
		}

		for _, em := range fd.Emotions {
			face.Emotions = append(face.Emotions, face_model.Emotion{
				Type:       face_model.EmotionType(em.Type),
				Confidence: float64(aws.ToFloat32(em.Confidence)),
			})
		}

		if fd.Smile != nil {
			face.Smile = boolAttribute(fd.Smile.Value, fd.Smile.Confidence)
		}
		if fd.EyesOpen != nil {
			face.EyesOpen = boolAttribute(fd.EyesOpen.Value, fd.EyesOpen.Confidence)
		}
		if fd.MouthOpen != nil {
			face.MouthOpen = boolAttribute(fd.MouthOpen.Value, fd.MouthOpen.Confidence)
		}
		if fd.Eyeglasses != nil {
			face.Eyeglasses = boolAttribute(fd.Eyeglasses.Value, fd.Eyeglasses.Confidence)
		}
		if fd.Sunglasses != nil {
			face.Sunglasses = boolAttribute(fd.Sunglasses.Value, fd.Sunglasses.Confidence)
		}
		if fd.Beard != nil {
			face.Beard = boolAttribute(fd.Beard.Value, fd.Beard.Confidence)
		}
		if fd.Mustache != nil {
			face.Mustache = boolAttribute(fd.Mustache.Value, fd.Mustache.Confidence)
		}

		if fd.Pose != nil {
			face.Pose = &face_model.Pose{
				Roll:  float64(aws.ToFloat32(fd.Pose.Roll)),
				Yaw:   float64(aws.ToFloat32(fd.Pose.Yaw)),
				Pitch: float64(aws.ToFloat32(fd.Pose.Pitch)),
			}
		}

		if fd.Quality != nil {
			face.Quality = &face_model.Quality{
				Brightness: float64(aws.ToFloat32(fd.Quality.Brightness)),
				Sharpness:  float64(aws.ToFloat32(fd.Quality.Sharpness)),
			}
		}

		faces = append(faces, face)
	}

	return faces
}

func boolAttribute(value bool, confidence *float32) *face_model.Attribute {
	return &face_model.Attribute{
		Value:      value,
		Confidence: float64(aws.ToFloat32(confidence)),
	}
}

func genderValue(v types.GenderType) string {
	switch v {
	case types.GenderTypeMale:
		return face_model.GenderMale
	case types.GenderTypeFemale:
		return face_model.GenderFemale
	}
	return face_model.GenderUnknown
}

// classifyRekognitionError maps SDK failures onto the shared taxonomy. The
// vendor message stays inside the wrap.
func classifyRekognitionError(err error) error {
	var (
		badFormat *types.InvalidImageFormatException
		tooLarge  *types.ImageTooLargeException
		throttled *types.ThrottlingException
		overLimit *types.ProvisionedThroughputExceededException
		denied    *types.AccessDeniedException
	)

	switch {
	case errors.As(err, &badFormat), errors.As(err, &tooLarge):
		return fmt.Errorf("%w: %v", ErrBadImage, err)
	case errors.As(err, &throttled), errors.As(err, &overLimit):
		return fmt.Errorf("%w: %v", ErrTransient, err)
	case errors.As(err, &denied):
		return fmt.Errorf("%w: %v", ErrAuth, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "UnrecognizedClientException", "InvalidSignatureException", "MissingAuthenticationToken":
			return fmt.Errorf("%w: %s", ErrAuth, apiErr.ErrorMessage())
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}

	return fmt.Errorf("rekognition: %w", err)
}
