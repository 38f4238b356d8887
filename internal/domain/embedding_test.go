package domain

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubEmbedder struct {
	err   error
	texts []string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	if s.err != nil {
		return EmbeddingResult{}, s.err
	}
	s.texts = append(s.texts, text)
	return EmbeddingResult{
		Embedding:    []float32{float32(len([]rune(text)))},
		PromptTokens: 1,
		TotalTokens:  2,
	}, nil
}

type stubBatchEmbedder struct {
	stubEmbedder
	batches [][]string
}

func (s *stubBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (BatchEmbeddingResult, error) {
	s.batches = append(s.batches, texts)
	return BatchEmbeddingResult{Embeddings: make([][]float32, len(texts)), TotalTokens: len(texts)}, nil
}

func TestInstructionEmbedder_QueryPrefix(t *testing.T) {
	inner := &stubEmbedder{}
	prefix := DefaultVectorConfig().QueryInstruction
	emb := NewInstructionEmbedder(inner, prefix)

	if _, err := emb.Embed(context.Background(), "脸上长痘"); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(inner.texts) != 1 || inner.texts[0] != prefix+"脸上长痘" {
		t.Errorf("inner got %q", inner.texts)
	}
}

func TestInstructionEmbedder_WrapsError(t *testing.T) {
	down := errors.New("gateway down")
	emb := NewInstructionEmbedder(&stubEmbedder{err: down}, "q: ")

	_, err := emb.Embed(context.Background(), "干燥")
	if !errors.Is(err, down) {
		t.Errorf("err = %v, want wrapped %v", err, down)
	}
}

func TestInstructionEmbedder_BatchUsesNativeBatch(t *testing.T) {
	inner := &stubBatchEmbedder{}
	emb := NewInstructionEmbedder(inner, "q: ")

	res, err := emb.BatchEmbed(context.Background(), []string{"油", "敏"})
	if err != nil {
		t.Fatalf("BatchEmbed: %v", err)
	}
	if len(inner.batches) != 1 || strings.Join(inner.batches[0], ",") != "q: 油,q: 敏" {
		t.Errorf("batches = %q", inner.batches)
	}
	if len(inner.texts) != 0 {
		t.Errorf("single Embed called %d times", len(inner.texts))
	}
	if res.TotalTokens != 2 {
		t.Errorf("tokens = %d", res.TotalTokens)
	}
}

func TestInstructionEmbedder_BatchFallsBack(t *testing.T) {
	inner := &stubEmbedder{}
	emb := NewInstructionEmbedder(inner, "q: ")

	res, err := emb.BatchEmbed(context.Background(), []string{"痘", "干燥"})
	if err != nil {
		t.Fatalf("BatchEmbed: %v", err)
	}
	if len(inner.texts) != 2 || inner.texts[1] != "q: 干燥" {
		t.Errorf("texts = %q", inner.texts)
	}
	if len(res.Embeddings) != 2 || res.Embeddings[1][0] != 5 {
		t.Errorf("embeddings = %v", res.Embeddings)
	}
	if res.PromptTokens != 2 || res.TotalTokens != 4 {
		t.Errorf("tokens = %d/%d", res.PromptTokens, res.TotalTokens)
	}
}

func TestBatchFallback_StopsOnError(t *testing.T) {
	_, err := BatchFallback(context.Background(), &stubEmbedder{err: ErrEmbeddingProviderError}, []string{"a"})
	if !errors.Is(err, ErrEmbeddingProviderError) {
		t.Errorf("err = %v", err)
	}
}

func TestZeroVector(t *testing.T) {
	if v := ZeroVector(0); v != nil {
		t.Errorf("ZeroVector(0) = %v", v)
	}
	v := ZeroVector(DefaultDimensions)
	if len(v) != DefaultDimensions || !IsZeroVector(v) {
		t.Errorf("ZeroVector(%d) has len %d", DefaultDimensions, len(v))
	}
	if IsZeroVector([]float32{0, 0.01}) {
		t.Error("non-zero vector reported as zero")
	}
}

func TestEmbeddingUsage(t *testing.T) {
	var nilUsage *EmbeddingUsage
	nilUsage.AddTokens(3)

	if UsageFromContext(context.Background()) != nil {
		t.Error("expected nil usage without collector")
	}

	ctx, u := NewContextWithUsage(context.Background())
	UsageFromContext(ctx).AddTokens(0)
	if !u.Used || u.TotalTokens != 0 {
		t.Errorf("cache hit: %+v", u)
	}
	UsageFromContext(ctx).AddTokens(9)
	if u.TotalTokens != 9 {
		t.Errorf("tokens = %d", u.TotalTokens)
	}
}
