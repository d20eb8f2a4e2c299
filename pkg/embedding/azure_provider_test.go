package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"chatdoc-be/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAzureTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestAzureProvider_Embed_PreservesOrder(t *testing.T) {
	srv, _ := newAzureTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/embed-small/embeddings", r.URL.Path)
		assert.Equal(t, DefaultAzureAPIVersion, r.URL.Query().Get("api-version"))
		assert.Equal(t, "secret", r.Header.Get("api-key"))

		var req azureEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"first", "second"}, req.Input)

		// answer out of order; the provider must sort by index
		_, _ = w.Write([]byte(`{"data":[{"index":1,"embedding":[0,1]},{"index":0,"embedding":[1,0]}]}`))
	})

	p := NewAzureProvider(AzureConfig{Endpoint: srv.URL + "/", ApiKey: "secret", Deployment: "embed-small"})
	vecs, err := p.Embed(context.Background(), []string{"first", "second"})

	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vecs)
}

func TestAzureProvider_Embed_EmptyInputSkipsNetwork(t *testing.T) {
	srv, calls := newAzureTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	p := NewAzureProvider(AzureConfig{Endpoint: srv.URL, ApiKey: "k", Deployment: "d"})
	vecs, err := p.Embed(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, vecs)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestAzureProvider_Embed_MissingConfig(t *testing.T) {
	srv, calls := newAzureTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	tests := []struct {
		name    string
		cfg     AzureConfig
		setting string
	}{
		{"endpoint", AzureConfig{ApiKey: "k", Deployment: "d"}, "AZURE_OPENAI_ENDPOINT"},
		{"key", AzureConfig{Endpoint: srv.URL, Deployment: "d"}, "AZURE_OPENAI_API_KEY"},
		{"deployment", AzureConfig{Endpoint: srv.URL, ApiKey: "k"}, "AZURE_OPENAI_EMBEDDINGS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAzureProvider(tt.cfg).Embed(context.Background(), []string{"x"})

			var cerr *apperror.ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.setting, cerr.Setting)
		})
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestAzureProvider_Embed_Non2xx(t *testing.T) {
	srv, _ := newAzureTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit"}}`))
	})

	p := NewAzureProvider(AzureConfig{Endpoint: srv.URL, ApiKey: "k", Deployment: "d"})
	_, err := p.Embed(context.Background(), []string{"x"})

	var perr *apperror.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusTooManyRequests, perr.Status)
	assert.Contains(t, perr.Body, "rate limit")
}

func TestAzureProvider_Embed_CountMismatch(t *testing.T) {
	srv, _ := newAzureTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[1]}]}`))
	})

	p := NewAzureProvider(AzureConfig{Endpoint: srv.URL, ApiKey: "k", Deployment: "d"})
	_, err := p.Embed(context.Background(), []string{"a", "b"})

	assert.ErrorIs(t, err, apperror.ErrProvider)
}

func TestAzureProvider_Embed_MalformedBody(t *testing.T) {
	srv, _ := newAzureTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	p := NewAzureProvider(AzureConfig{Endpoint: srv.URL, ApiKey: "k", Deployment: "d"})
	_, err := p.Embed(context.Background(), []string{"a"})

	assert.ErrorIs(t, err, apperror.ErrProvider)
}
