package factory

import (
	"fmt"
	"time"

	"chatdoc-be/pkg/llm"
	"chatdoc-be/pkg/llm/azure"
	"chatdoc-be/pkg/llm/ollama"
)

type Settings struct {
	Provider       string // "azure" or "ollama"
	Endpoint       string
	ApiKey         string
	ChatDeployment string
	ApiVersion     string
	OllamaBaseURL  string
	OllamaModel    string
	Timeout        time.Duration
}

func NewLLMProvider(s Settings) (llm.LLMProvider, error) {
	switch s.Provider {
	case "", "azure":
		return azure.NewProvider(azure.Config{
			Endpoint:   s.Endpoint,
			ApiKey:     s.ApiKey,
			Deployment: s.ChatDeployment,
			ApiVersion: s.ApiVersion,
			Timeout:    s.Timeout,
		}), nil
	case "ollama":
		baseURL := s.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, s.OllamaModel), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", s.Provider)
	}
}
