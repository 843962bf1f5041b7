// Package imagegen provides the image generation providers.
package imagegen

import (
	"context"
	"fmt"
	"net/http"

	"github.com/raphaelgruber/chatai/internal/config"
)

// Image is a generated picture.
type Image struct {
	Data     []byte
	MIMEType string
}

// Generator turns a prompt into an image.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Image, error)
	Name() string
}

// New creates the image generator selected by cfg.ImageProvider.
// httpClient is used by the REST providers; nil means http.DefaultClient.
func New(ctx context.Context, cfg config.Config, httpClient *http.Client) (Generator, error) {
	format := cfg.ImageFormat
	if format == "" {
		format = "webp"
	}

	switch cfg.ImageProvider {
	case config.ProviderStability, "":
		if cfg.StabilityAPIKey == "" {
			return nil, fmt.Errorf("Stability API key required (STABILITY_API_KEY)")
		}
		return NewStability(cfg.StabilityAPIKey, cfg.StabilityBaseURL, format, httpClient), nil

	case config.ProviderBedrock:
		return NewBedrockFromEnv(ctx, cfg.AWSRegion, cfg.ImageModel, format)

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		return NewOpenAI(cfg.OpenAIAPIKey, "", cfg.ImageModel, httpClient), nil

	default:
		return nil, fmt.Errorf("unsupported image provider: %s", cfg.ImageProvider)
	}
}
