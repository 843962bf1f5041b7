package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/raphaelgruber/chatai/internal/upstream"
	"github.com/sashabaranov/go-openai"
)

const (
	openaiProvider     = "openai"
	defaultOpenAIModel = openai.CreateImageModelDallE3
)

// OpenAI generates images through the OpenAI images API.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a client. An empty baseURL uses the public API.
func NewOpenAI(apiKey, baseURL, model string, httpClient *http.Client) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: model}
}

func (o *OpenAI) Name() string { return openaiProvider + "/" + o.model }

func (o *OpenAI) Generate(ctx context.Context, prompt string) (Image, error) {
	resp, err := o.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          o.model,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return Image{}, openaiError(err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return Image{}, upstream.Malformed(openaiProvider, fmt.Errorf("no image data in response"))
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return Image{}, upstream.Malformed(openaiProvider, err)
	}
	return Image{Data: data, MIMEType: "image/png"}, nil
}

func openaiError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &upstream.Error{Provider: openaiProvider, StatusCode: apiErr.HTTPStatusCode, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &upstream.Error{Provider: openaiProvider, StatusCode: reqErr.HTTPStatusCode, Err: err}
	}
	return upstream.Wrap(openaiProvider, err)
}
