// Package llm provides the text generation providers.
package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/raphaelgruber/chatai/internal/config"
)

// NoResponse is the answer used when a provider returns no text.
const NoResponse = "No response."

// Generator turns a prompt into answer text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	// Name identifies the provider and model, e.g. "gemini/gemini-2.0-flash".
	Name() string
}

// Default models per provider.
var defaultModels = map[string]string{
	config.ProviderGemini:    "gemini-2.0-flash",
	config.ProviderGenAI:     "gemini-2.0-flash",
	config.ProviderOpenAI:    "gpt-4o-mini",
	config.ProviderAnthropic: "claude-3-5-haiku-latest",
	config.ProviderOllama:    "llama3.2",
}

// New creates the text generator selected by cfg.TextProvider.
// httpClient is used by the REST provider; nil means http.DefaultClient.
func New(ctx context.Context, cfg config.Config, httpClient *http.Client) (Generator, error) {
	model := cfg.TextModel
	if model == "" {
		model = defaultModels[cfg.TextProvider]
	}

	switch cfg.TextProvider {
	case config.ProviderGemini, "":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("Gemini API key required (GEMINI_API_KEY)")
		}
		if model == "" {
			model = defaultModels[config.ProviderGemini]
		}
		return NewGemini(cfg.GeminiAPIKey, model, cfg.GeminiBaseURL, httpClient), nil

	case config.ProviderGenAI:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("Gemini API key required (GEMINI_API_KEY)")
		}
		return NewGenAI(ctx, cfg.GeminiAPIKey, model)

	case config.ProviderOpenAI, config.ProviderAnthropic, config.ProviderOllama:
		return NewModel(cfg.TextProvider, model, cfg)

	default:
		return nil, fmt.Errorf("unsupported text provider: %s", cfg.TextProvider)
	}
}
