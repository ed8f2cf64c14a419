package provider_test

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/clients/facepp_client"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/model/face_model"
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/provider"
)

// faceppDetectPayload is a Face++ detect body with one fully attributed face
// and one bare face past the vendor's per-call attribute limit.
const faceppDetectPayload = `{
	"request_id": "1755940000,a1b2",
	"time_used": 241,
	"face_num": 2,
	"faces": [
		{
			"face_token": "token-a",
			"face_rectangle": {"top": 40, "left": 60, "width": 20, "height": 30},
			"attributes": {
				"gender": {"value": "Female"},
				"age": {"value": 3},
				"smile": {"value": 62.5, "threshold": 50},
				"emotion": {"anger": 1, "disgust": 2, "fear": 3, "happiness": 80, "neutral": 10, "sadness": 2, "surprise": 2},
				"eyestatus": {
					"left_eye_status": {"normal_glass_eye_open": 80, "no_glass_eye_open": 5, "normal_glass_eye_close": 10, "no_glass_eye_close": 3, "occlusion": 1, "dark_glasses": 1},
					"right_eye_status": {"normal_glass_eye_open": 2, "no_glass_eye_open": 70, "normal_glass_eye_close": 20, "no_glass_eye_close": 6, "occlusion": 1, "dark_glasses": 1}
				},
				"mouthstatus": {"open": 70, "close": 25, "other_occlusion": 3, "surgical_mask_or_respirator": 2},
				"glass": {"value": "Dark"},
				"headpose": {"pitch_angle": 5.5, "roll_angle": -3, "yaw_angle": 12}
			}
		},
		{
			"face_token": "token-b",
			"face_rectangle": {"top": 10, "left": 5, "width": 15, "height": 25}
		}
	]
}`

// attributedFace is the canonical form of token-a: percent rectangle scaled
// to the unit square, age 3 widened to [0, 8], neutral mapped to CALM, eye
// masses 85 and 72 averaged to 78.5, dark glasses split into the two
// canonical attributes.
func attributedFace() face_model.DetectedFace {
	return face_model.DetectedFace{
		ID:          "token-a",
		Confidence:  100,
		BoundingBox: face_model.BoundingBox{Left: 0.6, Top: 0.4, Width: 0.2, Height: 0.3},
		AgeRange:    &face_model.AgeRange{Low: 0, High: 8},
		Gender:      &face_model.Gender{Value: face_model.GenderFemale, Confidence: 90},
		Emotions: []face_model.Emotion{
			{Type: face_model.EmotionAngry, Confidence: 1},
			{Type: face_model.EmotionDisgusted, Confidence: 2},
			{Type: face_model.EmotionFear, Confidence: 3},
			{Type: face_model.EmotionHappy, Confidence: 80},
			{Type: face_model.EmotionCalm, Confidence: 10},
			{Type: face_model.EmotionSad, Confidence: 2},
			{Type: face_model.EmotionSurprised, Confidence: 2},
		},
		Smile:      &face_model.Attribute{Value: true, Confidence: 62.5},
		EyesOpen:   &face_model.Attribute{Value: true, Confidence: 78.5},
		MouthOpen:  &face_model.Attribute{Value: true, Confidence: 70},
		Eyeglasses: &face_model.Attribute{Value: false, Confidence: 10},
		Sunglasses: &face_model.Attribute{Value: true, Confidence: 90},
		Pose:       &face_model.Pose{Roll: -3, Yaw: 12, Pitch: 5.5},
	}
}

func bareFace() face_model.DetectedFace {
	return face_model.DetectedFace{
		ID:          "token-b",
		Confidence:  100,
		BoundingBox: face_model.BoundingBox{Left: 0.05, Top: 0.1, Width: 0.15, Height: 0.25},
	}
}

func Test_FacePPAdapter_Normalize(t *testing.T) {
	type args struct {
		payload   string
		threshold float64
	}

	// Define table-driven tests
	tests := []struct {
		name          string
		args          args
		want          []face_model.DetectedFace
		wantErr       bool
		wantErrorType error
	}{
		{
			name: "maps attributed and bare faces",
			args: args{payload: faceppDetectPayload, threshold: 80},
			want: []face_model.DetectedFace{attributedFace(), bareFace()},
		},

		{ // filtering happened server-side, so a high threshold drops nothing
			name: "threshold does not filter normalized faces",
			args: args{payload: faceppDetectPayload, threshold: 99.9},
			want: []face_model.DetectedFace{attributedFace(), bareFace()},
		},

		{
			name: "empty face list yields no faces",
			args: args{payload: `{"request_id": "r", "time_used": 50, "face_num": 0, "faces": []}`, threshold: 80},
			want: []face_model.DetectedFace{},
		},

		{
			name:          "auth failure in the body",
			args:          args{payload: `{"time_used": 4, "error_message": "AUTHENTICATION_ERROR", "request_id": "r"}`, threshold: 80},
			wantErr:       true,
			wantErrorType: provider.ErrAuth,
		},

		{
			name:          "image failure in the body",
			args:          args{payload: `{"time_used": 4, "error_message": "INVALID_IMAGE_SIZE: image_base64", "request_id": "r"}`, threshold: 80},
			wantErr:       true,
			wantErrorType: provider.ErrBadImage,
		},

		{
			name:          "concurrency limit in the body",
			args:          args{payload: `{"time_used": 4, "error_message": "CONCURRENCY_LIMIT_EXCEEDED", "request_id": "r"}`, threshold: 80},
			wantErr:       true,
			wantErrorType: provider.ErrTransient,
		},

		{ // unknown vendor messages fail without a classification
			name:    "unknown failure in the body",
			args:    args{payload: `{"time_used": 4, "error_message": "SOME_NEW_ERROR", "request_id": "r"}`, threshold: 80},
			wantErr: true,
		},

		{
			name:          "malformed payload fails",
			args:          args{payload: `not json`, threshold: 80},
			wantErr:       true,
			wantErrorType: provider.ErrMalformedResponse,
		},
	}

	// Run all test cases
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := provider.NewFacePPAdapter(nil)

			got, err := adapter.Normalize([]byte(tt.args.payload), tt.args.threshold)
			if (err != nil) != tt.wantErr {
				t.Errorf("FacePPAdapter.Normalize() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErrorType != nil && !errors.Is(err, tt.wantErrorType) {
				t.Errorf("FacePPAdapter.Normalize() error = %v, wantErrorType %v", err, tt.wantErrorType)
				return
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FacePPAdapter.Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func Test_FacePPAdapter_Normalize_GeneratesMissingIds(t *testing.T) {
	payload := `{"request_id": "r", "time_used": 50, "face_num": 1, "faces": [{"face_rectangle": {"top": 10, "left": 10, "width": 10, "height": 10}}]}`

	adapter := provider.NewFacePPAdapter(nil)

	got, err := adapter.Normalize([]byte(payload), 80)
	if err != nil {
		t.Fatalf("FacePPAdapter.Normalize() error = %v, wantErr false", err)
	}
	if len(got) != 1 {
		t.Fatalf("FacePPAdapter.Normalize() faces = %d, want 1", len(got))
	}
	if got[0].ID == "" {
		t.Errorf("FacePPAdapter.Normalize() left the face id empty")
	}
}

func Test_FacePPAdapter_Detect(t *testing.T) {

	// Define table-driven tests
	tests := []struct {
		name          string
		body          string
		clientErr     error
		wantErrorType error
	}{
		{ // the body of a failed request still names the cause
			name:          "auth failure behind a 401",
			clientErr:     &facepp_client.APIError{StatusCode: 401, Body: []byte(`{"time_used": 3, "error_message": "AUTHENTICATION_ERROR"}`)},
			wantErrorType: provider.ErrAuth,
		},
		{
			name:          "rate limit behind a 403",
			clientErr:     &facepp_client.APIError{StatusCode: 403, Body: []byte(`{"time_used": 3, "error_message": "CONCURRENCY_LIMIT_EXCEEDED"}`)},
			wantErrorType: provider.ErrTransient,
		},
		{ // a gateway error carries no parseable body
			name:          "server failure behind a 502",
			clientErr:     &facepp_client.APIError{StatusCode: 502, Body: []byte("bad gateway")},
			wantErrorType: provider.ErrTransient,
		},
		{ // vendor failures can ride on a 200 response
			name:          "error message on a successful status",
			body:          `{"time_used": 4, "error_message": "IMAGE_ERROR_UNSUPPORTED_FORMAT: image_base64", "request_id": "r"}`,
			wantErrorType: provider.ErrBadImage,
		},
	}

	// Run all test cases
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeFacePPAPI{body: []byte(tt.body), err: tt.clientErr}
			adapter := provider.NewFacePPAdapter(client)

			_, err := adapter.Detect(context.Background(), []byte("jpeg bytes"), 80)
			if !errors.Is(err, tt.wantErrorType) {
				t.Errorf("FacePPAdapter.Detect() error = %v, wantErrorType %v", err, tt.wantErrorType)
			}
		})
	}

	t.Run("forwards the threshold and keeps the body verbatim", func(t *testing.T) {
		body := []byte(`{"request_id": "r", "time_used": 100, "face_num": 1, "faces": [{"face_token": "tok", "face_rectangle": {"top": 10, "left": 10, "width": 10, "height": 10}}]}`)
		client := &fakeFacePPAPI{body: body}
		adapter := provider.NewFacePPAdapter(client)

		got, err := adapter.Detect(context.Background(), []byte("jpeg bytes"), 85)
		if err != nil {
			t.Fatalf("FacePPAdapter.Detect() error = %v, wantErr false", err)
		}

		if client.gotThreshold != 85 {
			t.Errorf("FacePPAdapter.Detect() forwarded threshold = %v, want 85", client.gotThreshold)
		}
		if len(got.Faces) != 1 || got.Faces[0].ID != "tok" {
			t.Errorf("FacePPAdapter.Detect() faces = %+v, want the single token-identified face", got.Faces)
		}
		if !bytes.Equal(got.Raw, body) {
			t.Errorf("FacePPAdapter.Detect() raw = %s, want the verbatim body", got.Raw)
		}
	})
}

type fakeFacePPAPI struct {
	body         []byte
	err          error
	gotThreshold float64
}

func (f *fakeFacePPAPI) Detect(ctx context.Context, image []byte, confidenceThreshold float64) ([]byte, error) {
	f.gotThreshold = confidenceThreshold
	if f.err != nil {
		return nil, f.err
	}
	return f.body, nil
}
