package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	olla "github.com/ollama/ollama/api"

	"FlousWise/internal/models"
)

// Ollama 是一个用于 Ollama API 的 LLM 客户端。
type Ollama struct {
	client *olla.Client // Ollama 客户端实例。
	model  string       // 要使用的模型名称。
}

var _ LLM = (*Ollama)(nil)

// NewOllama 创建一个新的 Ollama 客户端。
//
// 参数:
//
//	model: 要使用的模型名称。
//	baseURL: Ollama 服务的基准 URL。如果为空，则默认为 "http://localhost:11434"。
//
// 返回值:
//
//	*Ollama: 新创建的 Ollama 客户端实例。
//	error: 如果基准 URL 无效，则返回错误。
func NewOllama(model, baseURL string) (*Ollama, error) {
	// 如果 baseURL 为空，则使用默认地址。
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	// 将字符串 URL 转换为 *url.URL。
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	// 创建一个带有超时设置的 HTTP 客户端。
	hc := &http.Client{
		Timeout: 120 * time.Second,
	}

	// 创建 Ollama 客户端。
	client := olla.NewClient(parsedURL, hc)

	return &Ollama{client: client, model: model}, nil
}

// GenerateContent 使用 Ollama API 生成内容。
func (o *Ollama) GenerateContent(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error) {
	var result *olla.GenerateResponse

	err := o.client.Generate(ctx, o.toOllamaRequest(req, false), func(resp olla.GenerateResponse) error {
		result = &resp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with ollama: %w", err)
	}
	if result == nil {
		return nil, fmt.Errorf("ollama returned no response")
	}

	return &models.GenerateResponse{Text: result.Response, Model: result.Model, Done: true}, nil
}

// GenerateContentStream 使用 Ollama API 以流式方式生成内容。
// 通道在流结束或上下文取消时关闭。
func (o *Ollama) GenerateContentStream(ctx context.Context, req *models.GenerateRequest) (<-chan *models.GenerateResponse, error) {
	respChan := make(chan *models.GenerateResponse)

	go func() {
		defer close(respChan)

		_ = o.client.Generate(ctx, o.toOllamaRequest(req, true), func(resp olla.GenerateResponse) error {
			select {
			case respChan <- &models.GenerateResponse{Text: resp.Response, Model: resp.Model, Done: resp.Done}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()

	return respChan, nil
}

// toOllamaRequest 将内部 GenerateRequest 转换为 Ollama 请求格式。
func (o *Ollama) toOllamaRequest(req *models.GenerateRequest, stream bool) *olla.GenerateRequest {
	options := map[string]interface{}{
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	return &olla.GenerateRequest{
		Model:   o.model,
		System:  req.System,
		Prompt:  req.Prompt,
		Stream:  &stream,
		Options: options,
	}
}
