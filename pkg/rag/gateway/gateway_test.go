package gateway

import (
	"context"
	"errors"
	"testing"

	"chatdoc-be/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	calls  [][]string
	failAt int // 1-based call number that fails, 0 never
	short  bool
}

func (f *fakeProvider) Model() string { return "fake-embed" }

func (f *fakeProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, texts)
	if f.failAt == len(f.calls) {
		return nil, apperror.NewProviderError("fake", 500, "boom")
	}
	n := len(texts)
	if f.short {
		n--
	}
	out := make([][]float32, n)
	for i := 0; i < n; i++ {
		out[i] = []float32{float32(len(texts[i]))}
	}
	return out, nil
}

func TestGateway_Embed(t *testing.T) {
	p := &fakeProvider{}
	g := New(p)

	vecs, err := g.Embed(context.Background(), []string{"a", "bbb"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}, {3}}, vecs)
	assert.Equal(t, "fake-embed", g.Model())
}

func TestGateway_Embed_EmptySkipsProvider(t *testing.T) {
	p := &fakeProvider{}

	vecs, err := New(p).Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
	assert.Empty(t, p.calls)
}

func TestGateway_Embed_CountMismatch(t *testing.T) {
	_, err := New(&fakeProvider{short: true}).Embed(context.Background(), []string{"a", "b"})

	var perr *apperror.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Contains(t, perr.Body, "expected 2 embeddings, got 1")
}

func TestGateway_EmbedBatches(t *testing.T) {
	tests := []struct {
		name      string
		texts     []string
		batchSize int
		wantCalls int
	}{
		{"exact multiple", []string{"a", "b", "c", "d"}, 2, 2},
		{"remainder", []string{"a", "b", "c"}, 2, 2},
		{"single batch", []string{"a", "b"}, 16, 1},
		{"empty", nil, 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{}
			vecs, err := New(p).EmbedBatches(context.Background(), tt.texts, tt.batchSize)

			require.NoError(t, err)
			assert.Len(t, vecs, len(tt.texts))
			assert.Len(t, p.calls, tt.wantCalls)
		})
	}
}

func TestGateway_EmbedBatches_AllOrNothing(t *testing.T) {
	p := &fakeProvider{failAt: 2}

	vecs, err := New(p).EmbedBatches(context.Background(), []string{"a", "b", "c"}, 1)

	assert.Nil(t, vecs)
	assert.ErrorIs(t, err, apperror.ErrProvider)
}

func TestGateway_EmbedBatches_InvalidSize(t *testing.T) {
	_, err := New(&fakeProvider{}).EmbedBatches(context.Background(), []string{"a"}, 0)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}
