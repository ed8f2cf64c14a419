// Package provider normalizes vendor face detection payloads into the
// canonical face model and classifies vendor failures.
package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/model/face_model"
)

// Name identifies a detection provider.
type Name string

const (
	AWS    Name = "aws"
	FacePP Name = "facepp"
)

// ParseName validates a provider tag coming from settings or requests.
func ParseName(s string) (Name, error) {
	switch Name(s) {
	case AWS, FacePP:
		return Name(s), nil
	}
	return "", fmt.Errorf("unknown provider %q", s)
}

// Detection bundles the canonical faces with the untouched vendor payload.
// Raw is kept for audit and storage only; no scoring code reads it.
type Detection struct {
	Faces []face_model.DetectedFace
	Raw   json.RawMessage
}

// Adapter converts one vendor's detection results into canonical faces.
//
// Normalize must accept a well-formed empty detection set without error and
// must return ErrMalformedResponse on a payload it cannot decode. Detect
// runs the remote call and then normalizes, returning one of the classified
// errors on failure.
type Adapter interface {
	Name() Name
	Normalize(payload []byte, confidenceThreshold float64) ([]face_model.DetectedFace, error)
	Detect(ctx context.Context, image []byte, confidenceThreshold float64) (*Detection, error)
}
