package azure

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
	"chatdoc-be/pkg/llm"
)

const (
	DefaultAPIVersion  = "2024-02-15-preview"
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 800
)

type Config struct {
	Endpoint   string
	ApiKey     string
	Deployment string
	ApiVersion string
	Timeout    time.Duration
}

// Provider talks to an Azure OpenAI chat completions deployment.
type Provider struct {
	cfg    Config
	client *http.Client
}

var _ llm.LLMProvider = (*Provider)(nil)

func NewProvider(cfg Config) *Provider {
	if cfg.ApiVersion == "" {
		cfg.ApiVersion = DefaultAPIVersion
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatRequest struct {
	Messages    []llm.Message `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *Provider) validate() error {
	switch {
	case p.cfg.Endpoint == "":
		return apperror.NewConfigError("AZURE_OPENAI_ENDPOINT")
	case p.cfg.ApiKey == "":
		return apperror.NewConfigError("AZURE_OPENAI_API_KEY")
	case p.cfg.Deployment == "":
		return apperror.NewConfigError("AZURE_OPENAI_CHAT")
	}
	return nil
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	if err := p.validate(); err != nil {
		return "", err
	}

	opts := llm.Apply(llm.Options{
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		Model:       p.cfg.Deployment,
	}, options...)

	reqBody := chatRequest{
		Messages:    llm.WithSystem(opts.SystemPrompt, history),
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(p.cfg.Endpoint, "/"), opts.Model, p.cfg.ApiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", p.cfg.ApiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", apperror.WrapProviderError("azure-chat", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperror.WrapProviderError("azure-chat", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apperror.NewProviderError("azure-chat", resp.StatusCode, string(bodyBytes))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return "", apperror.NewProviderError("azure-chat", resp.StatusCode, string(bodyBytes))
	}

	// a completion without choices is an empty answer, not a failure
	if len(chatResp.Choices) == 0 {
		return "", nil
	}

	return chatResp.Choices[0].Message.Content, nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}
