package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/raphaelgruber/chatai/internal/upstream"
	"github.com/tidwall/gjson"
)

const geminiProvider = "gemini"

// Gemini calls the generateContent REST endpoint directly.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

// NewGemini creates a REST client for model.
func NewGemini(apiKey, model, baseURL string, client *http.Client) *Gemini {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	return &Gemini{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

func (g *Gemini) Name() string { return geminiProvider + "/" + g.model }

// Generate sends prompt as a single user turn and returns the first candidate's text.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		g.baseURL, url.PathEscape(g.model), url.QueryEscape(g.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", upstream.Wrap(geminiProvider, redactKey(err, g.apiKey))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", upstream.Wrap(geminiProvider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", upstream.StatusError(geminiProvider, resp.StatusCode, data)
	}
	if !gjson.ValidBytes(data) {
		return "", upstream.Malformed(geminiProvider, errors.New("invalid JSON body"))
	}

	text := gjson.GetBytes(data, "candidates.0.content.parts.0.text").String()
	if text == "" {
		return NoResponse, nil
	}
	return text, nil
}

// redactKey strips the API key from transport errors, which quote the request URL.
func redactKey(err error, key string) error {
	escaped := url.QueryEscape(key)
	if key == "" || !strings.Contains(err.Error(), escaped) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), escaped, "REDACTED"))
}
