package facepp_client

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"time"
)

const (
	faceppApiUrlEnvName    = "FACEPP__API_URL"
	faceppApiKeyEnvName    = "FACEPP__API_KEY"
	faceppApiSecretEnvName = "FACEPP__API_SECRET"
)

// returnAttributes is the full attribute set requested on every call. The
// display toggles never shrink this list; they only affect rendering.
const returnAttributes = "gender,age,smiling,glass,headpose,eyestatus,emotion,mouthstatus"

// APIError is returned when Face++ answers with a non-2xx status. The body
// is kept because Face++ reports the failure reason in its error_message
// field rather than in the status line.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("face++ returned status %d", e.StatusCode)
}

// Client calls the Face++ detect API.
type Client struct{}

func New() *Client {
	return &Client{}
}

// Detect sends one frame to the Face++ detect endpoint and returns the raw
// JSON response body. The vendor filters detections server-side and takes
// the threshold on the 0-1 scale, so the 0-100 settings value is scaled
// before posting.
func (c *Client) Detect(ctx context.Context, image []byte, confidenceThreshold float64) (b []byte, err error) {

	url := fmt.Sprintf("%s/detect", os.Getenv(faceppApiUrlEnvName))

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)

	fields := map[string]string{
		"api_key":           os.Getenv(faceppApiKeyEnvName),
		"api_secret":        os.Getenv(faceppApiSecretEnvName),
		"image_base64":      base64.StdEncoding.EncodeToString(image),
		"return_attributes": returnAttributes,
		"threshold":         strconv.FormatFloat(confidenceThreshold/100, 'f', -1, 64),
	}
	for name, value := range fields {
		if err = form.WriteField(name, value); err != nil {
			return nil, err
		}
	}
	if err = form.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, body)
	if err != nil {
		log.Println(err)
		return nil, err
	}

	req.Header.Set("Content-Type", form.FormDataContentType())

	return reqUrl(req)
}

// reqUrl makes an HTTP request and returns the response body and an error.
func reqUrl(req *http.Request) (data []byte, err error) {

	client := &http.Client{Timeout: time.Second * time.Duration(10)}

	resp, err := client.Do(req)
	if err != nil {
		log.Println(err)
		return nil, err
	}
	defer resp.Body.Close()

	data, err = io.ReadAll(resp.Body)

	if err != nil {
		log.Println(err)
		return nil, err
	}

	if resp.StatusCode >= 400 && resp.StatusCode <= 599 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: data}
	}

	return data, nil
}
