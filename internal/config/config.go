package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"chatdoc-be/pkg/apperror"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Keys      APIKeys
	Provider  ProviderConfig
	Indexer   IndexerConfig
	Retrieval RetrievalConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	EventLogFilePath   string
	CorsAllowedOrigins string
	UploadDir          string
	MaxUploadMB        int
	NatsURL            string
	RedisURL           string
	StoreDriver        string // "postgres" or "memory"
	OtelEnabled        bool
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	JwtSecret   string
	JwtTTLHours int
}

// ProviderConfig holds the embedding and completion endpoints. Azure values
// may be empty at startup; the adapters report a ConfigError on first use.
type ProviderConfig struct {
	AzureEndpoint             string
	AzureApiKey               string
	AzureEmbeddingsDeployment string
	AzureChatDeployment       string
	AzureApiVersion           string

	AiProvider           string // "azure" or "ollama"
	OllamaBaseURL        string
	OllamaEmbeddingModel string
	OllamaChatModel      string

	TimeoutSeconds int
}

type IndexerConfig struct {
	ChunkSize               int
	ChunkOverlap            int
	EmbedBatchSize          int
	ExtractorCommand        string
	ExtractorScript         string
	ExtractorTimeoutSeconds int
}

type RetrievalConfig struct {
	TopN                 int
	MaxTopN              int
	EmbedCacheTTLMinutes int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "4000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			EventLogFilePath:   getEnv("EVENT_LOG_FILE_PATH", "logs/events.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
			MaxUploadMB:        getEnvAsInt("MAX_UPLOAD_MB", 50),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			StoreDriver:        getEnv("STORE_DRIVER", "postgres"),
			OtelEnabled:        getEnv("OTEL_ENABLED", "false") == "true",
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			JwtSecret:   getEnv("JWT_SECRET", ""),
			JwtTTLHours: getEnvAsInt("JWT_TTL_HOURS", 168),
		},
		Provider: ProviderConfig{
			AzureEndpoint:             getEnv("AZURE_OPENAI_ENDPOINT", ""),
			AzureApiKey:               getEnv("AZURE_OPENAI_API_KEY", ""),
			AzureEmbeddingsDeployment: getEnv("AZURE_OPENAI_EMBEDDINGS", ""),
			AzureChatDeployment:       getEnv("AZURE_OPENAI_CHAT", ""),
			AzureApiVersion:           getEnv("AZURE_OPENAI_API_VERSION", "2024-02-15-preview"),
			AiProvider:                getEnv("AI_PROVIDER", "azure"),
			OllamaBaseURL:             getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbeddingModel:      getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			OllamaChatModel:           getEnv("OLLAMA_CHAT_MODEL", "llama3"),
			TimeoutSeconds:            getEnvAsInt("PROVIDER_TIMEOUT_SECONDS", 60),
		},
		Indexer: IndexerConfig{
			ChunkSize:               getEnvAsInt("CHUNK_SIZE", 1200),
			ChunkOverlap:            getEnvAsInt("CHUNK_OVERLAP", 200),
			EmbedBatchSize:          getEnvAsInt("EMBED_BATCH_SIZE", 16),
			ExtractorCommand:        getEnv("EXTRACTOR_COMMAND", "python3"),
			ExtractorScript:         getEnv("EXTRACTOR_SCRIPT", "scripts/extract_pdf.py"),
			ExtractorTimeoutSeconds: getEnvAsInt("EXTRACTOR_TIMEOUT_SECONDS", 120),
		},
		Retrieval: RetrievalConfig{
			TopN:                 getEnvAsInt("RETRIEVAL_TOP_N", 8),
			MaxTopN:              getEnvAsInt("RETRIEVAL_MAX_TOP_N", 20),
			EmbedCacheTTLMinutes: getEnvAsInt("EMBED_CACHE_TTL_MINUTES", 60),
		},
	}
}

// Validate rejects settings the server cannot run with. Provider
// credentials are left to the adapters.
func (c *Config) Validate() error {
	switch {
	case c.Indexer.ChunkSize <= 0:
		return apperror.InvalidInput("CHUNK_SIZE must be positive, got %d", c.Indexer.ChunkSize)
	case c.Indexer.ChunkOverlap < 0 || c.Indexer.ChunkOverlap >= c.Indexer.ChunkSize:
		return apperror.InvalidInput("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", c.Indexer.ChunkOverlap)
	case c.Indexer.EmbedBatchSize <= 0:
		return apperror.InvalidInput("EMBED_BATCH_SIZE must be positive, got %d", c.Indexer.EmbedBatchSize)
	case c.Retrieval.TopN <= 0 || c.Retrieval.MaxTopN < c.Retrieval.TopN:
		return apperror.InvalidInput("RETRIEVAL_TOP_N must be in [1, RETRIEVAL_MAX_TOP_N]")
	case c.App.StoreDriver != "postgres" && c.App.StoreDriver != "memory":
		return apperror.InvalidInput("STORE_DRIVER must be postgres or memory, got %q", c.App.StoreDriver)
	case c.App.StoreDriver == "postgres" && c.Database.Connection == "":
		return apperror.NewConfigError("DB_CONNECTION_STRING")
	case c.Keys.JwtSecret == "":
		return apperror.NewConfigError("JWT_SECRET")
	}
	return nil
}

func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

func (i IndexerConfig) ExtractorTimeout() time.Duration {
	return time.Duration(i.ExtractorTimeoutSeconds) * time.Second
}

func (r RetrievalConfig) EmbedCacheTTL() time.Duration {
	return time.Duration(r.EmbedCacheTTLMinutes) * time.Minute
}

func (k APIKeys) JwtTTL() time.Duration {
	return time.Duration(k.JwtTTLHours) * time.Hour
}

// MaxFileBytes is the per-file upload ceiling.
func (a AppConfig) MaxFileBytes() int64 {
	return int64(a.MaxUploadMB) * 1024 * 1024
}

// BodyLimit caps a request carrying that many maximum-size files, plus
// 1 MB of multipart framing.
func (a AppConfig) BodyLimit(files int) int {
	return (a.MaxUploadMB*files + 1) * 1024 * 1024
}

func (a AppConfig) Addr() string {
	return fmt.Sprintf(":%s", a.Port)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
