package embedding

import (
	"context"
	"fmt"
	"strings"

	"FlousWise/internal/config"
	"FlousWise/internal/faults"
)

// New 根据配置创建并返回一个 Embedding 模型实例。
// 返回的实例已包含输入校验（空文本被拒绝）和可选的 LRU 缓存层。
//
// 参数:
//
//	cfg: 嵌入模型配置，包含提供商、模型名称和缓存参数。
//
// 返回值:
//
//	Embedding: 新创建的 Embedding 模型实例。
//	error: 如果提供商不支持或模型初始化失败，则返回错误。
func New(cfg *config.EmbeddingConfig) (Embedding, error) {
	var (
		inner Embedding
		err   error
	)
	// 根据提供商类型创建相应的 Embedding 模型实例。
	switch cfg.Provider {
	case "gemini":
		inner, err = NewGoogleModel(cfg.Gemini.APIKey, cfg.Gemini.Model)
	case "openai":
		inner, err = NewOpenAIModel(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	case "ollama":
		inner, err = NewOllamaModel(cfg.Ollama.Model, cfg.Ollama.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	var emb Embedding = &checked{inner: inner}
	if cfg.CacheCapacity > 0 {
		emb, err = NewCached(emb, cfg.CacheCapacity, cfg.CacheTTL)
		if err != nil {
			return nil, err
		}
	}
	return emb, nil
}

// checked 包装底层提供商：拒绝空白输入并把失败统一映射为 faults.EmbeddingError。
type checked struct {
	inner Embedding
}

var _ Embedding = (*checked)(nil)

func (c *checked) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &faults.EmbeddingError{Reason: "输入文本为空"}
	}
	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, &faults.EmbeddingError{Reason: "提供商调用失败", Err: err}
	}
	return vec, nil
}

func (c *checked) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, &faults.EmbeddingError{Reason: "输入批次为空"}
	}
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, &faults.EmbeddingError{Reason: fmt.Sprintf("批次中第 %d 条文本为空", i)}
		}
	}
	vecs, err := c.inner.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, &faults.EmbeddingError{Reason: "提供商调用失败", Err: err}
	}
	if len(vecs) != len(texts) {
		return nil, &faults.EmbeddingError{
			Reason: fmt.Sprintf("提供商返回了 %d 个向量，期望 %d 个", len(vecs), len(texts)),
		}
	}
	return vecs, nil
}
