package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"FlousWise/internal/faults"
)

const validYAML = `
app:
  name: "AIService"
  port: 8084
auth:
  jwtSecret: "secret"
llm:
  provider: "ollama"
  ollama:
    model: "llama3.1:8b"
    baseURL: "http://localhost:11434"
  temperature: 0.7
  maxTokens: 1024
  timeout: "60s"
embedding:
  provider: "ollama"
  ollama:
    model: "nomic-embed-text"
    baseURL: "http://localhost:11434"
  dim: 768
rag:
  topK: 5
  chunkSize: 500
  chunkOverlap: 50
  vectorStore: "milvus"
profile:
  financeServiceURL: "http://localhost:8081"
  cacheTTL: "5m"
databases:
  milvus:
    address: "localhost:19530"
    schema:
      collectionName: "finance_books"
      vectorField: "embedding"
  kafka:
    brokers: ["localhost:9092"]
    chatTopic: "chat.message.sent"
`

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	cfg, err := LoadConfig(writeConfigFile(t, validYAML))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.App.Name != "AIService" || cfg.App.Port != 8084 {
		t.Errorf("app section = %+v", cfg.App)
	}
	if cfg.RAG.ChunkSize != 500 || cfg.RAG.ChunkOverlap != 50 || cfg.RAG.TopK != 5 {
		t.Errorf("rag section = %+v", cfg.RAG)
	}
	if cfg.Embedding.Dim != 768 {
		t.Errorf("embedding.dim = %d", cfg.Embedding.Dim)
	}
	if cfg.Databases.Milvus.Schema.CollectionName != "finance_books" {
		t.Errorf("milvus schema = %+v", cfg.Databases.Milvus.Schema)
	}
	if cfg.Databases.Kafka.ChatTopic != "chat.message.sent" {
		t.Errorf("kafka section = %+v", cfg.Databases.Kafka)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	if _, err := LoadConfig(writeConfigFile(t, "rag: [not: a map")); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestValidate_InvalidParams(t *testing.T) {
	base := func() *AppConfig {
		return &AppConfig{
			RAG:       RAGConfig{TopK: 5, ChunkSize: 500, ChunkOverlap: 50},
			Embedding: EmbeddingConfig{Dim: 768},
		}
	}

	cases := []struct {
		name   string
		mutate func(*AppConfig)
		field  string
	}{
		{"zero chunk size", func(c *AppConfig) { c.RAG.ChunkSize = 0 }, "rag.chunkSize"},
		{"negative overlap", func(c *AppConfig) { c.RAG.ChunkOverlap = -1 }, "rag.chunkOverlap"},
		{"overlap >= chunk size", func(c *AppConfig) { c.RAG.ChunkOverlap = 500 }, "rag.chunkOverlap"},
		{"zero topK", func(c *AppConfig) { c.RAG.TopK = 0 }, "rag.topK"},
		{"zero dim", func(c *AppConfig) { c.Embedding.Dim = 0 }, "embedding.dim"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			err := cfg.Validate()
			var cfgErr *faults.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Field != tc.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tc.field)
			}
		})
	}
}
