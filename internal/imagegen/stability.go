package imagegen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/raphaelgruber/chatai/internal/upstream"
)

const stabilityProvider = "stability"

// Stability calls the Stable Image Ultra REST endpoint.
type Stability struct {
	apiKey  string
	baseURL string
	format  string
	client  *http.Client
}

// NewStability creates a client producing images in format (webp, png or jpeg).
func NewStability(apiKey, baseURL, format string, client *http.Client) *Stability {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = "https://api.stability.ai"
	}
	return &Stability{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		format:  format,
		client:  client,
	}
}

func (s *Stability) Name() string { return stabilityProvider + "/ultra" }

// Generate posts the prompt as multipart form data; the response body is the image.
func (s *Stability) Generate(ctx context.Context, prompt string) (Image, error) {
	var form bytes.Buffer
	w := multipart.NewWriter(&form)
	if err := w.WriteField("prompt", prompt); err != nil {
		return Image{}, fmt.Errorf("encode form: %w", err)
	}
	if err := w.WriteField("output_format", s.format); err != nil {
		return Image{}, fmt.Errorf("encode form: %w", err)
	}
	if err := w.Close(); err != nil {
		return Image{}, fmt.Errorf("encode form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/v2beta/stable-image/generate/ultra", &form)
	if err != nil {
		return Image{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "image/*")

	resp, err := s.client.Do(req)
	if err != nil {
		return Image{}, upstream.Wrap(stabilityProvider, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Image{}, upstream.Wrap(stabilityProvider, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Image{}, upstream.StatusError(stabilityProvider, resp.StatusCode, data)
	}
	if len(data) == 0 {
		return Image{}, upstream.Malformed(stabilityProvider, fmt.Errorf("empty image body"))
	}

	mimeType := "image/" + s.format
	if ct, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil && strings.HasPrefix(ct, "image/") {
		mimeType = ct
	}
	return Image{Data: data, MIMEType: mimeType}, nil
}
