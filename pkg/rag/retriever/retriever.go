package retriever

import (
	"context"
	"sort"

	"chatdoc-be/internal/entity"
	"chatdoc-be/internal/repository/unitofwork"
	"chatdoc-be/pkg/apperror"
	"chatdoc-be/pkg/rag/similarity"

	"github.com/google/uuid"
)

const (
	DefaultTopN    = 8
	DefaultMaxTopN = 20
)

type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type Options struct {
	TopN    int
	MaxTopN int
	// RestrictToBatch limits the scan to one indexing run when set.
	RestrictToBatch string
}

// Ranked is a chunk with its similarity to the query. Comparable is false
// when the chunk vector could not be compared to the query vector.
type Ranked struct {
	Chunk      *entity.Chunk
	Score      float64
	Comparable bool
}

type Retriever struct {
	embedder   Embedder
	uowFactory unitofwork.RepositoryFactory
	defaults   Options
}

func New(embedder Embedder, uowFactory unitofwork.RepositoryFactory, defaults Options) *Retriever {
	if defaults.TopN <= 0 {
		defaults.TopN = DefaultTopN
	}
	if defaults.MaxTopN <= 0 {
		defaults.MaxTopN = DefaultMaxTopN
	}
	return &Retriever{embedder: embedder, uowFactory: uowFactory, defaults: defaults}
}

// Limit resolves the effective result count for one call. Unset fields of
// opts fall back to the defaults given to New.
func (r *Retriever) Limit(opts Options) int {
	topN := opts.TopN
	if topN <= 0 {
		topN = r.defaults.TopN
	}
	maxTopN := opts.MaxTopN
	if maxTopN <= 0 {
		maxTopN = r.defaults.MaxTopN
	}
	if topN > maxTopN {
		topN = maxTopN
	}
	return topN
}

// Retrieve ranks every embedded chunk of the document against query by
// brute force and returns the best Limit(opts) of them.
func (r *Retriever) Retrieve(ctx context.Context, ownerId, documentId uuid.UUID, query string, opts Options) ([]Ranked, error) {
	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, apperror.NewProviderError("embedding", 0, "query embedding missing")
	}
	queryVec := vectors[0]

	uow := r.uowFactory.NewUnitOfWork(ctx)
	chunks, err := uow.ChunkRepository().FindEmbedded(ctx, ownerId, documentId, opts.RestrictToBatch)
	if err != nil {
		return nil, err
	}

	return Rank(queryVec, chunks, r.Limit(opts)), nil
}

// Rank scores chunks against queryVec and keeps the best limit results.
// Equal scores keep the incoming chunk order.
func Rank(queryVec []float32, chunks []*entity.Chunk, limit int) []Ranked {
	ranked := make([]Ranked, len(chunks))
	for i, c := range chunks {
		score, ok := similarity.Compare(queryVec, c.Embedding)
		ranked[i] = Ranked{Chunk: c, Score: score, Comparable: ok}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// ChunkIds returns the chunk ids in rank order.
func ChunkIds(ranked []Ranked) []uuid.UUID {
	ids := make([]uuid.UUID, len(ranked))
	for i, r := range ranked {
		ids[i] = r.Chunk.Id
	}
	return ids
}
