package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"FlousWise/internal/config"
	"FlousWise/internal/database/milvus"
	"FlousWise/internal/embedding"
	"FlousWise/internal/rag/pipeline"
	"FlousWise/internal/rag/splitters"
	"FlousWise/internal/rag/vectorstore"
	"FlousWise/pkg/logger"
)

// ingest_books 是离线摄取任务：读取书籍目录，分块、嵌入，
// 构建新一代向量索引并原子替换旧索引。与在线服务共用同一份配置，
// 保证两侧的嵌入模型和分块参数一致。
func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	sourceDir := flag.String("source", "", "directory containing the book files to ingest")
	collection := flag.String("collection", "", "override the collection alias from the config")
	flag.Parse()

	if *sourceDir == "" {
		log.Fatal("missing required flag: -source")
	}

	// 1. Load Configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *collection != "" {
		cfg.Databases.Milvus.Schema.CollectionName = *collection
	}

	// 2. Initialize Logger
	logger.InitFromString(cfg.Logger.Level)
	appLogger := logger.New("IngestBooks", "", "")
	appLogger.Info("Starting book ingestion...")

	ctx := context.Background()

	// 3. Connect to Milvus
	milvusClient, err := milvus.Connect(ctx, &cfg.Databases.Milvus)
	if err != nil {
		log.Fatalf("Failed to connect to Milvus: %v", err)
	}
	defer milvusClient.Close()
	store := vectorstore.NewMilvusStore(milvusClient)

	// 4. Initialize the embedding model and splitter
	embedder, err := embedding.New(&cfg.Embedding)
	if err != nil {
		log.Fatalf("Failed to create embedding client: %v", err)
	}

	splitter, err := splitters.NewWordSplitter(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err != nil {
		log.Fatalf("Invalid chunking parameters: %v", err)
	}

	// 5. Run the indexing pipeline
	indexing := pipeline.NewIndexingPipeline(splitter, embedder, store, appLogger)
	count, err := indexing.Run(ctx, *sourceDir)
	if err != nil {
		log.Fatalf("Ingestion failed: %v", err)
	}

	appLogger.Info(fmt.Sprintf("Ingestion complete: %d passages indexed into '%s'.",
		count, cfg.Databases.Milvus.Schema.CollectionName))
}
