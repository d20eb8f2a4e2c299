package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"chatdoc-be/pkg/apperror"

	"github.com/redis/go-redis/v9"
)

// CachedProvider memoizes vectors in Redis keyed by model and text digest.
// Cache failures never fail a call; the inner provider is used instead.
// An inner Validator is checked before the cache, so a misconfigured
// provider fails even when every text is cached.
type CachedProvider struct {
	inner EmbeddingProvider
	rdb   redis.Cmdable
	ttl   time.Duration
}

var _ EmbeddingProvider = (*CachedProvider)(nil)

func NewCachedProvider(inner EmbeddingProvider, rdb redis.Cmdable, ttl time.Duration) *CachedProvider {
	return &CachedProvider{inner: inner, rdb: rdb, ttl: ttl}
}

func (p *CachedProvider) Model() string {
	return p.inner.Model()
}

func CacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return "embedding:" + model + ":" + hex.EncodeToString(sum[:])
}

func (p *CachedProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 || p.rdb == nil {
		return p.inner.Embed(ctx, texts)
	}
	if v, ok := p.inner.(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}

	keys := make([]string, len(texts))
	for i, text := range texts {
		keys[i] = CacheKey(p.inner.Model(), text)
	}

	out := make([][]float32, len(texts))
	var missIdx []int

	cached, err := p.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return p.inner.Embed(ctx, texts)
	}
	for i, raw := range cached {
		s, ok := raw.(string)
		if !ok {
			missIdx = append(missIdx, i)
			continue
		}
		var vec []float32
		if err := json.Unmarshal([]byte(s), &vec); err != nil {
			missIdx = append(missIdx, i)
			continue
		}
		out[i] = vec
	}

	if len(missIdx) == 0 {
		return out, nil
	}

	missTexts := make([]string, len(missIdx))
	for j, i := range missIdx {
		missTexts[j] = texts[i]
	}

	fresh, err := p.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, apperror.NewProviderError(p.inner.Model(), 0,
			fmt.Sprintf("expected %d embeddings, got %d", len(missTexts), len(fresh)))
	}

	pipe := p.rdb.Pipeline()
	for j, i := range missIdx {
		out[i] = fresh[j]
		if data, err := json.Marshal(fresh[j]); err == nil {
			pipe.Set(ctx, keys[i], data, p.ttl)
		}
	}
	_, _ = pipe.Exec(ctx)

	return out, nil
}
