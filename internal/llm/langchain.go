package llm

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/chatai/internal/config"
	"github.com/raphaelgruber/chatai/internal/upstream"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Model wraps a langchaingo LLM for text generation.
type Model struct {
	llm       llms.Model
	provider  string
	modelName string
}

// NewModel creates a langchaingo model for provider.
func NewModel(provider, modelName string, cfg config.Config) (*Model, error) {
	var model llms.Model
	var err error

	switch provider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(modelName),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(modelName),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(modelName),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}

	return &Model{
		llm:       model,
		provider:  provider,
		modelName: modelName,
	}, nil
}

// NewModelFrom wraps an existing langchaingo model.
func NewModelFrom(provider, modelName string, m llms.Model) *Model {
	return &Model{llm: m, provider: provider, modelName: modelName}
}

func (m *Model) Name() string { return m.provider + "/" + m.modelName }

// Generate sends prompt as a single human message.
func (m *Model) Generate(ctx context.Context, prompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	response, err := m.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", upstream.Wrap(m.provider, err)
	}

	if len(response.Choices) == 0 || response.Choices[0].Content == "" {
		return NoResponse, nil
	}
	return response.Choices[0].Content, nil
}
