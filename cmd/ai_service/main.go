package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"FlousWise/internal/ai_service/api"
	"FlousWise/internal/ai_service/service"
	"FlousWise/internal/config"
	"FlousWise/internal/database/kafka"
	"FlousWise/internal/database/milvus"
	mongodb "FlousWise/internal/database/mongo"
	redisdb "FlousWise/internal/database/redis"
	"FlousWise/internal/embedding"
	"FlousWise/internal/history"
	"FlousWise/internal/llm"
	"FlousWise/internal/profile"
	"FlousWise/internal/rag/interfaces"
	"FlousWise/internal/rag/pipeline"
	"FlousWise/internal/rag/vectorstore"
	"FlousWise/internal/regional"
	pkghttp "FlousWise/pkg/http"
	"FlousWise/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize Logger
	logger.InitFromString(cfg.Logger.Level)
	appLogger := logger.New(cfg.App.Name, "", "")
	appLogger.Info("Starting AI Service...")

	ctx := context.Background()

	// 3. Initialize Databases
	redisClient, err := redisdb.Connect(ctx, &cfg.Databases.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	mongoClient, err := mongodb.Connect(ctx, &cfg.Databases.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())

	// 4. Initialize the Vector Store
	var (
		store        interfaces.VectorStore
		milvusClient *milvus.Client
	)
	switch cfg.RAG.VectorStore {
	case "memory":
		appLogger.Warn("Using in-memory vector store; index is empty until ingestion runs in-process")
		store = vectorstore.NewMemoryStore()
	default:
		milvusClient, err = milvus.Connect(ctx, &cfg.Databases.Milvus)
		if err != nil {
			log.Fatalf("Failed to connect to Milvus: %v", err)
		}
		defer milvusClient.Close()
		store = vectorstore.NewMilvusStore(milvusClient)
	}

	// 5. Initialize Models
	embedder, err := embedding.New(&cfg.Embedding)
	if err != nil {
		log.Fatalf("Failed to create embedding client: %v", err)
	}

	// A persisted index built with a different embedding model is unusable;
	// refuse to start instead of serving garbage retrievals.
	if err := store.VerifyDimension(ctx, cfg.Embedding.Dim); err != nil {
		log.Fatalf("Vector index dimension check failed: %v", err)
	}

	llmClient, err := llm.NewClient(&cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}

	// 6. Initialize Services
	regionalProvider := regional.NewProvider(cfg.Regional.ContextFile, appLogger)

	httpClient, err := pkghttp.NewClient(cfg.Middleware.CircuitBreaker)
	if err != nil {
		log.Fatalf("Failed to create HTTP client: %v", err)
	}
	profileService, err := profile.New(&cfg.Profile, profile.NewRedisCache(redisClient), httpClient, appLogger)
	if err != nil {
		log.Fatalf("Failed to create profile service: %v", err)
	}

	historyStore := history.NewMongoStore(mongoClient, cfg.Databases.MongoDB.Database, cfg.Databases.MongoDB.Collection)

	// Kafka is optional: without brokers the service runs without chat events.
	var publisher service.EventPublisher
	var kafkaClient *kafka.Client
	if len(cfg.Databases.Kafka.Brokers) > 0 {
		kafkaClient, err = kafka.Connect(&cfg.Databases.Kafka)
		if err != nil {
			appLogger.WithPayload(map[string]interface{}{"error": err.Error()}).
				Warn("Kafka unavailable, chat events disabled")
		} else {
			defer kafkaClient.Close()
			publisher = kafka.NewChatPublisher(kafkaClient)
		}
	}

	// 7. Assemble the Pipeline
	qa := pipeline.NewQAPipeline(llmClient, regionalProvider, cfg.LLM.Temperature, cfg.LLM.MaxTokens, appLogger)
	queries := pipeline.NewQueryPipeline(embedder, store, profileService, qa, cfg.RAG.TopK, appLogger)
	appService := service.New(queries, historyStore, publisher, appLogger)

	// 8. Set up the HTTP server
	health := map[string]api.HealthChecker{
		"redis": func(ctx context.Context) error { return redisdb.HealthCheck(ctx, redisClient) },
		"mongodb": func(ctx context.Context) error {
			return mongodb.HealthCheck(ctx, mongoClient)
		},
	}
	if milvusClient != nil {
		health["milvus"] = milvusClient.HealthCheck
	}
	if kafkaClient != nil {
		health["kafka"] = kafkaClient.HealthCheck
	}

	handler := api.NewHandler(appService, profileService, health)
	router, err := api.SetupRouter(handler, cfg)
	if err != nil {
		log.Fatalf("Failed to set up router: %v", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		appLogger.Info(fmt.Sprintf("HTTP server listening at %s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	// 9. Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down AI Service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithPayload(map[string]interface{}{"error": err.Error()}).Error("HTTP server shutdown failed")
	}
	appLogger.Info("AI Service stopped.")
}
