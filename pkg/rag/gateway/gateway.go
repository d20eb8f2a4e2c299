package gateway

import (
	"context"
	"fmt"

	"chatdoc-be/pkg/apperror"
	"chatdoc-be/pkg/embedding"
)

// Gateway turns text into vectors through one embedding provider. It adds
// the contract every caller relies on: one vector per input, in input order.
type Gateway struct {
	provider embedding.EmbeddingProvider
}

func New(provider embedding.EmbeddingProvider) *Gateway {
	return &Gateway{provider: provider}
}

func (g *Gateway) Model() string {
	return g.provider.Model()
}

// Embed sends texts in a single provider call. Empty input never reaches the network.
func (g *Gateway) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	vectors, err := g.provider.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, apperror.NewProviderError(g.provider.Model(), 0,
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(vectors)))
	}
	return vectors, nil
}

// EmbedBatches splits texts into calls of at most batchSize inputs and
// concatenates the results. Any failing batch discards the whole result.
func (g *Gateway) EmbedBatches(ctx context.Context, texts []string, batchSize int) ([][]float32, error) {
	if batchSize <= 0 {
		return nil, apperror.InvalidInput("batch size must be positive, got %d", batchSize)
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := g.Embed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}
	return out, nil
}
