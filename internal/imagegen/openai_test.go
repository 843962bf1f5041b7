package imagegen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/raphaelgruber/chatai/internal/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIGenerate(t *testing.T) {
	var req map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/generations", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&req)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"created": 1,
			"data":    []any{map[string]any{"b64_json": base64.StdEncoding.EncodeToString([]byte("PNGDATA"))}},
		})
	}))
	defer srv.Close()

	o := NewOpenAI("sk-test", srv.URL+"/v1", "", srv.Client())
	img, err := o.Generate(context.Background(), "a red fox")
	require.NoError(t, err)

	assert.Equal(t, []byte("PNGDATA"), img.Data)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, "a red fox", req["prompt"])
	assert.Equal(t, "b64_json", req["response_format"])
	assert.Equal(t, "dall-e-3", req["model"])
	assert.Equal(t, "openai/dall-e-3", o.Name())
}

func TestOpenAIStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	_, err := NewOpenAI("bad", srv.URL+"/v1", "", srv.Client()).Generate(context.Background(), "x")
	var ue *upstream.Error
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusUnauthorized, ue.StatusCode)
	assert.True(t, upstream.IsAuthError(err))
}

func TestOpenAIEmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"created":1,"data":[]}`)
	}))
	defer srv.Close()

	_, err := NewOpenAI("k", srv.URL+"/v1", "", srv.Client()).Generate(context.Background(), "x")
	assert.ErrorIs(t, err, upstream.ErrMalformedPayload)
}
