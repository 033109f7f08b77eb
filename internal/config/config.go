package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"FlousWise/internal/faults"
)

// FieldConfig 定义了 Milvus 集合中字段的配置。
type FieldConfig struct {
	Name         string `yaml:"name"`                // 字段名称
	DataType     string `yaml:"dataType"`            // 字段数据类型 (例如: "Int64", "VarChar", "FloatVector")
	IsPrimaryKey bool   `yaml:"isPrimaryKey"`        // 是否为主键
	IsAutoID     bool   `yaml:"isAutoID"`            // 是否自动生成ID
	Dim          int    `yaml:"dim,omitempty"`       // 向量维度 (仅适用于向量类型)
	MaxLength    int    `yaml:"maxLength,omitempty"` // 最大长度 (仅适用于VarChar类型)
}

// IndexConfig 定义了 Milvus 集合中索引的配置。
type IndexConfig struct {
	FieldName  string                 `yaml:"fieldName"`  // 要创建索引的字段名称
	IndexType  string                 `yaml:"indexType"`  // 索引类型 (例如: "IVF_FLAT", "HNSW")
	MetricType string                 `yaml:"metricType"` // 相似度度量类型 (本服务约定使用 "COSINE")
	Params     map[string]interface{} `yaml:"params"`     // 索引参数 (例如: {"nlist": 128})
}

// SchemaConfig 定义了 Milvus 集合的 Schema 配置。
// CollectionName 是对外可见的集合别名；摄取任务在别名背后构建带时间戳的
// 新一代集合，构建完成后原子切换别名（见 vectorstore 包）。
type SchemaConfig struct {
	CollectionName string        `yaml:"collectionName"` // 集合别名
	Description    string        `yaml:"description"`    // 集合描述
	VectorField    string        `yaml:"vectorField"`    // 向量字段名称
	Fields         []FieldConfig `yaml:"fields"`         // 字段配置列表
	Index          IndexConfig   `yaml:"index"`          // 索引配置
}

// MilvusConfig 定义了 Milvus 数据库的连接和 Schema 配置。
type MilvusConfig struct {
	Address string       `yaml:"address"` // Milvus 服务地址
	Schema  SchemaConfig `yaml:"schema"`  // Milvus 集合 Schema 配置
}

// RedisConfig 定义了 Redis 数据库的连接配置。
type RedisConfig struct {
	Address  string `yaml:"address"`  // Redis 服务器地址 (例如: "localhost:6379")
	Password string `yaml:"password"` // Redis 密码
	DB       int    `yaml:"db"`       // Redis 数据库编号
}

// MongoConfig 定义了 MongoDB 数据库的连接配置。
type MongoConfig struct {
	Address    string `yaml:"address"`    // MongoDB 服务器地址
	Username   string `yaml:"username"`   // 用户名
	Password   string `yaml:"password"`   // 密码
	Database   string `yaml:"database"`   // 数据库名称
	Collection string `yaml:"collection"` // 聊天历史集合名称
}

// KafkaConfig 定义了 Kafka 消息队列的连接配置。
type KafkaConfig struct {
	Brokers   []string `yaml:"brokers"`   // Kafka Broker 地址列表
	ChatTopic string   `yaml:"chatTopic"` // chat.message.sent 事件主题
}

// DatabaseConfigs 包含所有数据库的配置。
type DatabaseConfigs struct {
	Milvus  MilvusConfig `yaml:"milvus"`  // Milvus 向量数据库配置
	Redis   RedisConfig  `yaml:"redis"`   // Redis 缓存配置
	MongoDB MongoConfig  `yaml:"mongodb"` // MongoDB 聊天历史配置
	Kafka   KafkaConfig  `yaml:"kafka"`   // Kafka 事件总线配置
}

// AppInfo 对应 'app' 部分，包含应用程序的基本信息。
type AppInfo struct {
	Name        string `yaml:"name"`        // 应用程序名称
	Port        int    `yaml:"port"`        // HTTP 监听端口
	Environment string `yaml:"environment"` // 运行环境 (例如: "development", "production")
}

// AuthConfig 用于配置认证相关设置。
// 本服务不签发令牌，只校验上游 auth-service 签发的 JWT 并透传原始令牌给
// Finance Service。JwtSecret 必须与 auth-service 保持一致。
type AuthConfig struct {
	JwtSecret string `yaml:"jwtSecret"` // JWT 签名密钥
}

// LoggerConfig 定义了日志记录器的配置。
type LoggerConfig struct {
	Level string `yaml:"level"` // 日志级别 (例如: "info", "debug", "warn", "error")
}

// ProviderConfig 包含了单个模型提供商的连接配置。
type ProviderConfig struct {
	Model   string `yaml:"model"`             // 模型名称
	APIKey  string `yaml:"apiKey,omitempty"`  // API 密钥 (ollama 不需要)
	BaseURL string `yaml:"baseURL,omitempty"` // 服务基础 URL (仅 ollama 需要)
}

// LLMConfig 包含了生成模型的配置。
type LLMConfig struct {
	Provider    string         `yaml:"provider"`    // 提供商: "ollama", "gemini", "openai"
	Ollama      ProviderConfig `yaml:"ollama"`      // Ollama 配置
	Gemini      ProviderConfig `yaml:"gemini"`      // Gemini 配置
	OpenAI      ProviderConfig `yaml:"openai"`      // OpenAI 配置
	Temperature float64        `yaml:"temperature"` // 生成随机性 (0.0 为确定性)
	MaxTokens   int            `yaml:"maxTokens"`   // 回答长度上限
	Timeout     string         `yaml:"timeout"`     // 单次生成调用的超时 (例如: "60s")
}

// EmbeddingConfig 包含了嵌入模型的配置。
// Dim 必须与模型的实际输出维度一致；服务启动时会用它校验已持久化集合的维度，
// 不一致视为致命的配置错误。
type EmbeddingConfig struct {
	Provider      string         `yaml:"provider"`      // 提供商: "ollama", "gemini", "openai"
	Ollama        ProviderConfig `yaml:"ollama"`        // Ollama 配置
	Gemini        ProviderConfig `yaml:"gemini"`        // Gemini 配置
	OpenAI        ProviderConfig `yaml:"openai"`        // OpenAI 配置
	Dim           int            `yaml:"dim"`           // 嵌入向量维度
	CacheCapacity int            `yaml:"cacheCapacity"` // 问题向量 LRU 缓存容量；0 表示禁用
	CacheTTL      string         `yaml:"cacheTTL"`      // 问题向量缓存的存活时间 (例如: "10m")
}

// RAGConfig 包含了检索增强生成管线的参数。
type RAGConfig struct {
	TopK         int    `yaml:"topK"`         // 每次查询检索的文段数量
	ChunkSize    int    `yaml:"chunkSize"`    // 文档分块大小（词数）
	ChunkOverlap int    `yaml:"chunkOverlap"` // 相邻分块的重叠词数
	VectorStore  string `yaml:"vectorStore"`  // 向量存储实现: "milvus" 或 "memory"（本地开发用）
}

// ProfileConfig 包含了理财档案来源及其缓存的配置。
type ProfileConfig struct {
	FinanceServiceURL string `yaml:"financeServiceURL"` // Finance Service 基础 URL
	CacheTTL          string `yaml:"cacheTTL"`          // 档案缓存的存活时间 (例如: "5m")
}

// RegionalConfig 包含了区域经济背景数据的配置。
type RegionalConfig struct {
	ContextFile string `yaml:"contextFile"` // 背景数据 JSON 文件路径；文件缺失时使用空映射
}

// RateLimiterConfig 定义了限流器的配置。
type RateLimiterConfig struct {
	Enabled        bool                 `yaml:"enabled"`
	Algorithm      string               `yaml:"algorithm"` // 支持: "fixedWindow", "slidingLog", "slidingCounter", "leakyBucket", "tokenBucket"
	FixedWindow    FixedWindowConfig    `yaml:"fixedWindow"`
	SlidingLog     SlidingLogConfig     `yaml:"slidingLog"`
	SlidingCounter SlidingCounterConfig `yaml:"slidingCounter"`
	LeakyBucket    LeakyBucketConfig    `yaml:"leakyBucket"`
	TokenBucket    TokenBucketConfig    `yaml:"tokenBucket"`
}

// FixedWindowConfig 定义了固定窗口计数器算法的配置。
type FixedWindowConfig struct {
	Limit  int    `yaml:"limit"`
	Window string `yaml:"window"` // 例如: "1m", "30s"
}

// SlidingLogConfig 定义了滑动窗口日志算法的配置。
type SlidingLogConfig struct {
	Limit  int    `yaml:"limit"`
	Window string `yaml:"window"`
}

// SlidingCounterConfig 定义了滑动窗口计数器算法的配置。
type SlidingCounterConfig struct {
	Limit      int    `yaml:"limit"`
	Window     string `yaml:"window"`
	NumBuckets int    `yaml:"numBuckets"`
}

// LeakyBucketConfig 定义了漏桶算法的配置。
type LeakyBucketConfig struct {
	Rate     float64 `yaml:"rate"` // 每秒速率
	Capacity int     `yaml:"capacity"`
}

// TokenBucketConfig 定义了令牌桶算法的配置。
type TokenBucketConfig struct {
	Rate     float64 `yaml:"rate"` // 每秒速率
	Capacity int     `yaml:"capacity"`
}

// CircuitBreakerConfig 定义了熔断器的配置，用于保护对 Finance Service 的调用。
type CircuitBreakerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	FailureThreshold uint32 `yaml:"failureThreshold"`
	SuccessThreshold uint32 `yaml:"successThreshold"`
	Timeout          string `yaml:"timeout"` // 例如: "30s"
}

// MiddlewareConfig 包含所有中间件的配置。
type MiddlewareConfig struct {
	RateLimiter    RateLimiterConfig    `yaml:"rateLimiter"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker"`
}

// AppConfig 是整个 YAML 文件的根结构，包含了应用程序的所有配置。
type AppConfig struct {
	App        AppInfo          `yaml:"app"`        // 应用程序信息
	Auth       AuthConfig       `yaml:"auth"`       // 认证配置
	LLM        LLMConfig        `yaml:"llm"`        // 生成模型配置
	Embedding  EmbeddingConfig  `yaml:"embedding"`  // 嵌入模型配置
	RAG        RAGConfig        `yaml:"rag"`        // 检索管线配置
	Profile    ProfileConfig    `yaml:"profile"`    // 理财档案配置
	Regional   RegionalConfig   `yaml:"regional"`   // 区域背景数据配置
	Logger     LoggerConfig     `yaml:"logger"`     // 日志记录器配置
	Databases  DatabaseConfigs  `yaml:"databases"`  // 数据库配置
	Middleware MiddlewareConfig `yaml:"middleware"` // 中间件配置
}

// LoadConfig 函数从指定路径加载并解析 YAML 配置文件。
//
// 参数:
//
//	path: YAML 配置文件的路径。
//
// 返回值:
//
//	*AppConfig: 解析后的应用程序配置结构体。
//	error: 如果文件读取、解析或校验失败，则返回错误。
func LoadConfig(path string) (*AppConfig, error) {
	// 读取 YAML 文件内容。
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取 YAML 文件 '%s': %w", path, err)
	}
	var cfg AppConfig
	// 将 YAML 内容解析到 cfg 结构体中。
	if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
		return nil, fmt.Errorf("解析 YAML 文件失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 对配置做启动期校验。非法的分块参数和维度属于致命的配置错误。
func (c *AppConfig) Validate() error {
	if c.RAG.ChunkSize <= 0 {
		return &faults.ConfigError{Field: "rag.chunkSize", Reason: "必须大于 0"}
	}
	if c.RAG.ChunkOverlap < 0 || c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return &faults.ConfigError{Field: "rag.chunkOverlap", Reason: "必须满足 0 <= overlap < chunkSize"}
	}
	if c.RAG.TopK < 1 {
		return &faults.ConfigError{Field: "rag.topK", Reason: "必须至少为 1"}
	}
	if c.Embedding.Dim <= 0 {
		return &faults.ConfigError{Field: "embedding.dim", Reason: "必须大于 0"}
	}
	return nil
}
