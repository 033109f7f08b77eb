package embedding

import (
	"context"
	"fmt"
	"time"

	"FlousWise/pkg/util"
)

// Cached 在底层 Embedding 之上增加一个带 TTL 的 LRU 缓存层。
// 嵌入是确定性的，因此同一文本可以安全复用缓存向量。
// 主要用于用户问题：热门问题的重复嵌入调用可以直接命中缓存。
type Cached struct {
	inner Embedding
	cache *util.LRUCache[string, []float32]
}

var _ Embedding = (*Cached)(nil)

// NewCached 创建一个带缓存的 Embedding 包装。
//
// 参数:
//
//	inner: 底层 Embedding 实例。
//	capacity: 缓存的最大条目数。
//	ttl: 条目的存活时间字符串（例如 "10m"）；为空表示永不过期。
func NewCached(inner Embedding, capacity int, ttl string) (*Cached, error) {
	var d time.Duration
	if ttl != "" {
		var err error
		d, err = time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("无效的缓存 TTL '%s': %w", ttl, err)
		}
	}
	cache, err := util.NewWithConfig(util.CacheConfig[string, []float32]{
		Capacity: capacity,
		TTL:      d,
	})
	if err != nil {
		return nil, fmt.Errorf("创建嵌入缓存失败: %w", err)
	}
	return &Cached{inner: inner, cache: cache}, nil
}

// Embed 先查缓存，未命中时调用底层模型并回填。
func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := c.cache.Get(text); ok {
		return vec, nil
	}
	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Put(text, vec, 1)
	return vec, nil
}

// EmbedBatch 直接透传。批量路径用于摄取，每段文本只出现一次，缓存没有收益。
func (c *Cached) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return c.inner.EmbedBatch(ctx, texts)
}
