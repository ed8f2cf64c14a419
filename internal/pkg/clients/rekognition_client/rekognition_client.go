// Package rekognition_client wraps the AWS Rekognition face detection call.
package rekognition_client

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// Client calls Rekognition DetectFaces.
type Client struct {
	api *rekognition.Client
}

// New builds a client from the default AWS credential chain. Region and
// credentials come from the usual AWS environment variables.
func New(ctx context.Context) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}

	return &Client{api: rekognition.NewFromConfig(cfg)}, nil
}

// DetectFaces submits the image bytes with the full attribute set. Detection
// always asks for every attribute; the display toggles only limit what is
// rendered later.
func (c *Client) DetectFaces(ctx context.Context, image []byte) (*rekognition.DetectFacesOutput, error) {
	return c.api.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: image},
		Attributes: []types.Attribute{types.AttributeAll},
	})
}
