package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FlousWise/internal/config"
	"FlousWise/internal/faults"
	"FlousWise/internal/models"
)

// LLM 定义了所有大型语言模型客户端必须实现的通用接口。
type LLM interface {
	GenerateContent(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error)
	GenerateContentStream(ctx context.Context, req *models.GenerateRequest) (<-chan *models.GenerateResponse, error)
}

// NewClient 是一个工厂函数，根据提供的配置创建并返回一个实现了 LLM 接口的客户端。
// 返回的客户端已包含超时控制：单次生成调用超过配置的时限会被取消，
// 并映射为 faults.GenerationTimeout。
func NewClient(cfg *config.LLMConfig) (LLM, error) {
	var (
		inner LLM
		err   error
	)
	switch cfg.Provider {
	case "ollama":
		inner, err = NewOllama(cfg.Ollama.Model, cfg.Ollama.BaseURL)
	case "gemini":
		inner, err = NewGemini(context.Background(), cfg.Gemini.Model, cfg.Gemini.APIKey)
	case "openai":
		inner, err = NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	timeout := 60 * time.Second
	if cfg.Timeout != "" {
		timeout, err = time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("无效的生成超时 '%s': %w", cfg.Timeout, err)
		}
	}
	return &timed{inner: inner, timeout: timeout}, nil
}

// timed 包装底层客户端：强制超时并把失败统一映射为 faults 类别。
type timed struct {
	inner   LLM
	timeout time.Duration
}

var _ LLM = (*timed)(nil)

func (t *timed) GenerateContent(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	resp, err := t.inner.GenerateContent(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &faults.GenerationTimeout{Timeout: t.timeout}
		}
		return nil, &faults.GenerationError{Err: err}
	}
	return resp, nil
}

// GenerateContentStream 的超时只约束流的建立；流一旦开始，其生命周期由调用方的
// 上下文控制。
func (t *timed) GenerateContentStream(ctx context.Context, req *models.GenerateRequest) (<-chan *models.GenerateResponse, error) {
	ch, err := t.inner.GenerateContentStream(ctx, req)
	if err != nil {
		return nil, &faults.GenerationError{Err: err}
	}
	return ch, nil
}
