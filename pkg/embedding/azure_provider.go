package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chatdoc-be/pkg/apperror"
)

const (
	DefaultAzureAPIVersion = "2024-02-15-preview"
	defaultAzureTimeout    = 60 * time.Second
)

type AzureConfig struct {
	Endpoint   string
	ApiKey     string
	Deployment string
	ApiVersion string
	Timeout    time.Duration
}

// AzureProvider calls an Azure OpenAI embeddings deployment. Settings are
// checked on every call so the process can start without credentials.
type AzureProvider struct {
	cfg    AzureConfig
	client *http.Client
}

var _ EmbeddingProvider = (*AzureProvider)(nil)

func NewAzureProvider(cfg AzureConfig) *AzureProvider {
	if cfg.ApiVersion == "" {
		cfg.ApiVersion = DefaultAzureAPIVersion
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultAzureTimeout
	}
	return &AzureProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type azureEmbeddingRequest struct {
	Input []string `json:"input"`
}

type azureEmbeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

func (p *AzureProvider) Model() string {
	return p.cfg.Deployment
}

var _ Validator = (*AzureProvider)(nil)

// Validate reports the first missing setting as a ConfigError.
func (p *AzureProvider) Validate() error {
	switch {
	case p.cfg.Endpoint == "":
		return apperror.NewConfigError("AZURE_OPENAI_ENDPOINT")
	case p.cfg.ApiKey == "":
		return apperror.NewConfigError("AZURE_OPENAI_API_KEY")
	case p.cfg.Deployment == "":
		return apperror.NewConfigError("AZURE_OPENAI_EMBEDDINGS")
	}
	return nil
}

func (p *AzureProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	jsonBody, err := json.Marshal(azureEmbeddingRequest{Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/embeddings?api-version=%s",
		strings.TrimRight(p.cfg.Endpoint, "/"), p.cfg.Deployment, p.cfg.ApiVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", p.cfg.ApiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, apperror.WrapProviderError("azure-embeddings", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.WrapProviderError("azure-embeddings", fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperror.NewProviderError("azure-embeddings", resp.StatusCode, string(body))
	}

	var embedResp azureEmbeddingResponse
	if err := json.Unmarshal(body, &embedResp); err != nil {
		return nil, apperror.NewProviderError("azure-embeddings", resp.StatusCode, string(body))
	}

	if len(embedResp.Data) != len(texts) {
		return nil, apperror.NewProviderError("azure-embeddings", resp.StatusCode,
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(embedResp.Data)))
	}

	embeddings := make([][]float32, len(texts))
	for _, data := range embedResp.Data {
		if data.Index < 0 || data.Index >= len(texts) || embeddings[data.Index] != nil {
			return nil, apperror.NewProviderError("azure-embeddings", resp.StatusCode,
				fmt.Sprintf("unexpected embedding index %d", data.Index))
		}
		embeddings[data.Index] = toFloat32(data.Embedding)
	}

	return embeddings, nil
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}
