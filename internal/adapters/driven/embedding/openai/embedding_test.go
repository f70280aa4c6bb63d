package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func newTestEmbedder(t *testing.T, dims int, handler http.HandlerFunc) *Embedder {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	e, err := New(Config{APIKey: "test-key", BaseURL: srv.URL, Dimensions: dims, MaxRetries: 0})
	require.NoError(t, err)
	return e
}

func embeddingBody(vec []float64) map[string]any {
	return map[string]any{
		"object": "list",
		"model":  DefaultModel,
		"data": []map[string]any{
			{"object": "embedding", "index": 0, "embedding": vec},
		},
		"usage": map[string]any{"prompt_tokens": 1, "total_tokens": 1},
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNew_Dimensions(t *testing.T) {
	e, err := New(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, 1536, e.Dimensions())

	e, err = New(Config{APIKey: "k", Dimensions: 384})
	require.NoError(t, err)
	assert.Equal(t, 384, e.Dimensions())

	e, err = New(Config{APIKey: "k", Model: "text-embedding-ada-002", Dimensions: 384})
	require.NoError(t, err)
	assert.Equal(t, 1536, e.Dimensions())
}

func TestEmbed_Success(t *testing.T) {
	e := newTestEmbedder(t, 2, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, DefaultModel, body["model"])
		assert.EqualValues(t, 2, body["dimensions"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(embeddingBody([]float64{3, 4}))
	})

	vec, err := e.Embed(context.Background(), "hello")
	require.NoError(t, err)
	require.Len(t, vec, 2)
	assert.InDelta(t, 0.6, vec[0], 1e-6)
	assert.InDelta(t, 0.8, vec[1], 1e-6)
}

func TestEmbed_EmptyText(t *testing.T) {
	e, err := New(Config{APIKey: "k"})
	require.NoError(t, err)

	_, err = e.Embed(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrEmbedding)
}

func TestEmbed_APIError(t *testing.T) {
	e := newTestEmbedder(t, 2, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	})

	_, err := e.Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, domain.ErrEmbedding)
}

func TestEmbed_DimensionMismatch(t *testing.T) {
	e := newTestEmbedder(t, 2, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(embeddingBody([]float64{1, 2, 3}))
	})

	_, err := e.Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}
