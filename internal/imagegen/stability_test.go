package imagegen

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/raphaelgruber/chatai/internal/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStabilityRequest(t *testing.T) {
	var got struct {
		method, path, auth, accept string
		prompt, format             string
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.auth = r.Header.Get("Authorization")
		got.accept = r.Header.Get("Accept")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		got.prompt = r.FormValue("prompt")
		got.format = r.FormValue("output_format")

		w.Header().Set("Content-Type", "image/webp")
		_, _ = io.WriteString(w, "RIFF....WEBP")
	}))
	defer srv.Close()

	s := NewStability("sk-test", srv.URL, "webp", srv.Client())
	img, err := s.Generate(context.Background(), "a lighthouse at dusk")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/v2beta/stable-image/generate/ultra", got.path)
	assert.Equal(t, "Bearer sk-test", got.auth)
	assert.Equal(t, "image/*", got.accept)
	assert.Equal(t, "a lighthouse at dusk", got.prompt)
	assert.Equal(t, "webp", got.format)

	assert.Equal(t, []byte("RIFF....WEBP"), img.Data)
	assert.Equal(t, "image/webp", img.MIMEType)
}

func TestStabilityMIMETypeFallsBackToFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer srv.Close()

	img, err := NewStability("k", srv.URL, "png", nil).Generate(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
}

func TestStabilityErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantErr    error
	}{
		{"payment required", http.StatusPaymentRequired, `{"name":"payment_required","errors":["lacks credits"]}`, 402, nil},
		{"content moderation", http.StatusForbidden, `{"name":"content_moderation"}`, 403, nil},
		{"empty body", http.StatusOK, "", 0, upstream.ErrMalformedPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewStability("k", srv.URL, "webp", srv.Client()).Generate(context.Background(), "x")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			var ue *upstream.Error
			require.ErrorAs(t, err, &ue)
			assert.Equal(t, tt.wantStatus, ue.StatusCode)
			assert.Equal(t, "stability", ue.Provider)
		})
	}
}

func TestStabilityNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := NewStability("k", srv.URL, "webp", nil).Generate(context.Background(), "x")
	var ue *upstream.Error
	require.ErrorAs(t, err, &ue)
	assert.Zero(t, ue.StatusCode)
	assert.Contains(t, ue.Detail(), "connection refused")
}
