package embedding

import "context"

// EmbeddingProvider turns texts into vectors. Implementations return one
// vector per input, in input order.
type EmbeddingProvider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Model identifies the deployment or model producing the vectors.
	Model() string
}

// Validator is implemented by providers that can check their settings
// without a network call.
type Validator interface {
	Validate() error
}
