package bootstrap

import (
	"context"
	"log"

	"chatdoc-be/internal/config"
	"chatdoc-be/internal/controller"
	"chatdoc-be/internal/handler"
	"chatdoc-be/internal/pkg/logger"
	"chatdoc-be/internal/repository/memory"
	"chatdoc-be/internal/repository/unitofwork"
	"chatdoc-be/internal/service"
	"chatdoc-be/pkg/embedding"
	"chatdoc-be/pkg/events"
	"chatdoc-be/pkg/extractor"
	"chatdoc-be/pkg/llm/factory"
	"chatdoc-be/pkg/rag/gateway"
	"chatdoc-be/pkg/rag/history"
	"chatdoc-be/pkg/rag/response"
	"chatdoc-be/pkg/rag/retriever"
	"chatdoc-be/pkg/tokenizer"

	internalWS "chatdoc-be/internal/websocket"
	pktNats "chatdoc-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController     controller.IAuthController
	DocumentController controller.IDocumentController
	IndexerController  controller.IIndexerController
	ChatController     controller.IChatController
	EventStreamHandler *handler.EventStreamHandler

	// Services, exposed for the server and the ops CLI
	AuthService     service.IAuthService
	DocumentService service.IDocumentService
	IndexerService  service.IIndexerService
	ChatService     service.IChatService

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger  logger.ILogger
	closers []func()
}

// NewContainer wires every component. db may be nil when the memory
// store driver is selected.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	var uowFactory unitofwork.RepositoryFactory
	if cfg.App.StoreDriver == "memory" {
		uowFactory = memory.NewRepositoryFactory(memory.NewStore())
		log.Printf("[INFO] Using store driver: MEMORY (data is lost on restart)")
	} else {
		uowFactory = unitofwork.NewRepositoryFactory(db)
		log.Printf("[INFO] Using store driver: POSTGRES")
	}

	c := &Container{Logger: sysLogger}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var forwarder service.EventForwarder
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			forwarder = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	// Redis memoizes query embeddings and fans socket frames out across instances
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	hub := internalWS.NewHub(rdb, sysLogger)
	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)
	c.closers = append(c.closers, stopHub)

	eventLogger := logger.NewIsolatedLogger(cfg.App.EventLogFilePath)
	publisherService := service.NewPublisherService(events.Topic, pubSub)
	c.ConsumerService = service.NewConsumerService(pubSub, events.Topic, forwarder, hub, eventLogger)

	// 3. Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Provider.AiProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Provider.OllamaBaseURL,
			cfg.Provider.OllamaEmbeddingModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Provider.OllamaEmbeddingModel)
	} else {
		embeddingProvider = embedding.NewAzureProvider(embedding.AzureConfig{
			Endpoint:   cfg.Provider.AzureEndpoint,
			ApiKey:     cfg.Provider.AzureApiKey,
			Deployment: cfg.Provider.AzureEmbeddingsDeployment,
			ApiVersion: cfg.Provider.AzureApiVersion,
			Timeout:    cfg.Provider.Timeout(),
		})
		log.Printf("[INFO] Using Embedding Provider: AZURE (%s)", cfg.Provider.AzureEmbeddingsDeployment)
	}

	queryEmbedder := embeddingProvider
	if rdb != nil {
		queryEmbedder = embedding.NewCachedProvider(embeddingProvider, rdb, cfg.Retrieval.EmbedCacheTTL())
	}

	llmProvider, err := factory.NewLLMProvider(factory.Settings{
		Provider:       cfg.Provider.AiProvider,
		Endpoint:       cfg.Provider.AzureEndpoint,
		ApiKey:         cfg.Provider.AzureApiKey,
		ChatDeployment: cfg.Provider.AzureChatDeployment,
		ApiVersion:     cfg.Provider.AzureApiVersion,
		OllamaBaseURL:  cfg.Provider.OllamaBaseURL,
		OllamaModel:    cfg.Provider.OllamaChatModel,
		Timeout:        cfg.Provider.Timeout(),
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s", cfg.Provider.AiProvider)

	// 4. RAG pipeline
	pdfExtractor := extractor.NewCommandExtractor(extractor.Config{
		Command: cfg.Indexer.ExtractorCommand,
		Script:  cfg.Indexer.ExtractorScript,
		Timeout: cfg.Indexer.ExtractorTimeout(),
	})
	indexGateway := gateway.New(embeddingProvider)
	chunkRetriever := retriever.New(gateway.New(queryEmbedder), uowFactory, retriever.Options{
		TopN:    cfg.Retrieval.TopN,
		MaxTopN: cfg.Retrieval.MaxTopN,
	})
	generator := response.NewGenerator(llmProvider, sysLogger)
	conversationLog := history.NewConversationLog(uowFactory)

	// 5. Services
	c.AuthService = service.NewAuthService(uowFactory, cfg.Keys.JwtSecret, cfg.Keys.JwtTTL(), sysLogger)
	c.DocumentService = service.NewDocumentService(uowFactory, cfg.App.UploadDir, publisherService, sysLogger)
	c.IndexerService = service.NewIndexerService(
		uowFactory,
		pdfExtractor,
		indexGateway,
		tokenizer.NewEstimator(),
		service.IndexerOptions{
			UploadDir:      cfg.App.UploadDir,
			ChunkSize:      cfg.Indexer.ChunkSize,
			ChunkOverlap:   cfg.Indexer.ChunkOverlap,
			EmbedBatchSize: cfg.Indexer.EmbedBatchSize,
		},
		publisherService,
		sysLogger,
	)
	c.ChatService = service.NewChatService(chunkRetriever, generator, conversationLog, publisherService, sysLogger)

	// 6. Controllers
	c.AuthController = controller.NewAuthController(c.AuthService)
	c.DocumentController = controller.NewDocumentController(c.DocumentService, cfg.Keys.JwtSecret, cfg.App.MaxFileBytes())
	c.IndexerController = controller.NewIndexerController(c.IndexerService, cfg.Keys.JwtSecret)
	c.ChatController = controller.NewChatController(c.ChatService, cfg.Keys.JwtSecret)
	c.EventStreamHandler = handler.NewEventStreamHandler(hub, cfg.Keys.JwtSecret, sysLogger)

	return c
}

// Close releases brokers and caches in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
