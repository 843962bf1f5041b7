package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/raphaelgruber/chatai/internal/upstream"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const genaiProvider = "genai"

// GenAI generates text through the Google generative AI SDK.
type GenAI struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
}

// NewGenAI creates an SDK client for model.
func NewGenAI(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*GenAI, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GenAI{
		client:    client,
		model:     client.GenerativeModel(model),
		modelName: model,
	}, nil
}

func (g *GenAI) Name() string { return genaiProvider + "/" + g.modelName }

func (g *GenAI) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", genaiError(err)
	}

	if text := extractText(resp); text != "" {
		return text, nil
	}
	return NoResponse, nil
}

// Close releases the SDK connection.
func (g *GenAI) Close() error {
	return g.client.Close()
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
	}
	return text.String()
}

// genaiError carries the HTTP status of SDK errors into an upstream.Error.
func genaiError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code != 0 {
		return &upstream.Error{Provider: genaiProvider, StatusCode: gerr.Code, Err: err}
	}
	var coded interface{ HTTPCode() int }
	if errors.As(err, &coded) && coded.HTTPCode() > 0 {
		return &upstream.Error{Provider: genaiProvider, StatusCode: coded.HTTPCode(), Err: err}
	}
	return upstream.Wrap(genaiProvider, err)
}
