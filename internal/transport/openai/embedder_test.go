package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/kailas-cloud/skinrec/internal/domain"
	"github.com/kailas-cloud/skinrec/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterAll()
	os.Exit(m.Run())
}

type embeddingItem struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

type usage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type embeddingResponse struct {
	Object string          `json:"object"`
	Data   []embeddingItem `json:"data"`
	Model  string          `json:"model"`
	Usage  usage           `json:"usage"`
}

// embeddingServer answers every request with items and tokens.
func embeddingServer(t *testing.T, tokens int, items ...embeddingItem) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(embeddingResponse{
			Object: "list",
			Model:  "bge-test",
			Data:   items,
			Usage:  usage{PromptTokens: tokens, TotalTokens: tokens},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestEmbedder(url string) *Embedder {
	return NewEmbedder(&Config{APIKey: "test-key", BaseURL: url, Model: "bge-test", Provider: "test"})
}

func TestEmbedder_Embed(t *testing.T) {
	want := []float32{0.1, 0.2, 0.3, 0.4}
	srv := embeddingServer(t, 12, embeddingItem{Object: "embedding", Embedding: want})

	res, err := newTestEmbedder(srv.URL).Embed(context.Background(), "皮肤干燥")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(res.Embedding) != len(want) {
		t.Fatalf("got %d dimensions, want %d", len(res.Embedding), len(want))
	}
	for i, v := range res.Embedding {
		if v != want[i] {
			t.Errorf("vec[%d] = %f, want %f", i, v, want[i])
		}
	}
	if res.PromptTokens != 12 || res.TotalTokens != 12 {
		t.Errorf("usage = %d/%d, want 12/12", res.PromptTokens, res.TotalTokens)
	}
}

func TestEmbedder_BatchEmbedRestoresOrder(t *testing.T) {
	srv := embeddingServer(t, 20,
		embeddingItem{Object: "embedding", Embedding: []float32{0.3, 0.4}, Index: 1},
		embeddingItem{Object: "embedding", Embedding: []float32{0.1, 0.2}, Index: 0},
	)

	res, err := newTestEmbedder(srv.URL).BatchEmbed(context.Background(), []string{"保湿", "控油"})
	if err != nil {
		t.Fatalf("BatchEmbed failed: %v", err)
	}
	if len(res.Embeddings) != 2 {
		t.Fatalf("got %d embeddings", len(res.Embeddings))
	}
	if res.Embeddings[0][0] != 0.1 || res.Embeddings[1][0] != 0.3 {
		t.Errorf("order not restored: %v", res.Embeddings)
	}
	if res.TotalTokens != 20 {
		t.Errorf("TotalTokens = %d", res.TotalTokens)
	}
}

func TestEmbedder_BatchEmbedEmpty(t *testing.T) {
	res, err := newTestEmbedder("http://unused").BatchEmbed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Embeddings != nil {
		t.Errorf("expected nil embeddings, got %v", res.Embeddings)
	}
}

func TestEmbedder_BadResponses(t *testing.T) {
	tests := []struct {
		name  string
		items []embeddingItem
	}{
		{"count mismatch", []embeddingItem{{Embedding: []float32{0.1}}}},
		{"duplicate index", []embeddingItem{{Embedding: []float32{0.1}}, {Embedding: []float32{0.2}}}},
		{"index out of range", []embeddingItem{{Embedding: []float32{0.1}}, {Embedding: []float32{0.2}, Index: 5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := embeddingServer(t, 1, tt.items...)
			_, err := newTestEmbedder(srv.URL).BatchEmbed(context.Background(), []string{"a", "b"})
			if !errors.Is(err, domain.ErrEmbeddingProviderError) {
				t.Errorf("expected ErrEmbeddingProviderError, got %v", err)
			}
		})
	}
}

func TestEmbedder_APIError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   any
	}{
		{"rate limited", http.StatusTooManyRequests, map[string]any{"error": map[string]any{"message": "rate limit exceeded", "type": "rate_limit_error"}}},
		{"gateway detail", http.StatusBadRequest, map[string]any{"detail": "model not found"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(tt.body)
			}))
			defer srv.Close()

			_, err := newTestEmbedder(srv.URL).Embed(context.Background(), "hello")
			if !errors.Is(err, domain.ErrEmbeddingProviderError) {
				t.Errorf("expected ErrEmbeddingProviderError, got %v", err)
			}
		})
	}
}
