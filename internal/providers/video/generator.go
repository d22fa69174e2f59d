package video

import (
	"context"

	"logomotion/internal/domain"
	"logomotion/internal/providers/veo"
	"logomotion/pkg/imagedata"
)

// GenerateRequest is the provider-agnostic input for one logo animation.
type GenerateRequest struct {
	Prompt      string
	Image       *imagedata.Image
	AspectRatio domain.AspectRatio
	RequestID   string
}

// Asset is the downloaded generation result.
type Asset struct {
	SourceURI string
	MIME      string
	Data      []byte
}

// Generator produces a finished video for a request, blocking until the
// provider reports completion.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*Asset, error)
}

// VeoGenerator runs generations through the Veo long-running API and fetches
// the resulting binary.
type VeoGenerator struct {
	client *veo.Client
}

func NewVeoGenerator(client *veo.Client) *VeoGenerator {
	return &VeoGenerator{client: client}
}

func (g *VeoGenerator) Generate(ctx context.Context, req GenerateRequest) (*Asset, error) {
	uri, err := g.client.Generate(ctx, veo.GenerateRequest{
		Prompt:      req.Prompt,
		Image:       req.Image,
		AspectRatio: req.AspectRatio,
		RequestID:   req.RequestID,
	})
	if err != nil {
		return nil, err
	}
	data, mime, err := g.client.Download(ctx, uri)
	if err != nil {
		return nil, err
	}
	return &Asset{SourceURI: uri, MIME: mime, Data: data}, nil
}

var _ Generator = (*VeoGenerator)(nil)
