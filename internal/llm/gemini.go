package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"FlousWise/internal/models"
)

// Gemini 是一个实现了 LLM 接口的结构体，用于与 Gemini API 交互。
type Gemini struct {
	client *genai.Client // GenAI 客户端实例。
	model  string        // 要使用的模型名称。
}

var _ LLM = (*Gemini)(nil)

// NewGemini 创建一个新的 Gemini 客户端。
//
// 参数:
//
//	ctx: 上下文，用于控制客户端的生命周期。
//	model: 要使用的 Gemini 模型名称。
//	apiKey: Gemini API 密钥。
//
// 返回值:
//
//	*Gemini: 新创建的 Gemini 客户端实例。
//	error: 如果无法创建 GenAI 客户端，则返回错误。
func NewGemini(ctx context.Context, model, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Gemini{client: client, model: model}, nil
}

// generativeModel 按请求参数构造一个配置好的生成模型。
// 每次请求独立构造，系统指令和采样参数互不串扰。
func (g *Gemini) generativeModel(req *models.GenerateRequest) *genai.GenerativeModel {
	m := g.client.GenerativeModel(g.model)
	m.SetTemperature(float32(req.Temperature))
	if req.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.System != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	return m
}

// GenerateContent 向 Gemini API 发送请求并返回响应。
func (g *Gemini) GenerateContent(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error) {
	resp, err := g.generativeModel(req).GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return nil, err
	}
	text, err := textFromGenaiResponse(resp)
	if err != nil {
		return nil, err
	}
	return &models.GenerateResponse{Text: text, Model: g.model, Done: true}, nil
}

// GenerateContentStream 向 Gemini API 发送请求并返回响应通道。
func (g *Gemini) GenerateContentStream(ctx context.Context, req *models.GenerateRequest) (<-chan *models.GenerateResponse, error) {
	iter := g.generativeModel(req).GenerateContentStream(ctx, genai.Text(req.Prompt))

	ch := make(chan *models.GenerateResponse)
	go func() {
		defer close(ch)
		for {
			resp, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				select {
				case ch <- &models.GenerateResponse{Model: g.model, Done: true}:
				case <-ctx.Done():
				}
				return
			}
			if err != nil {
				return
			}
			text, err := textFromGenaiResponse(resp)
			if err != nil {
				return
			}
			select {
			case ch <- &models.GenerateResponse{Text: text, Model: g.model}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

// textFromGenaiResponse 从 GenAI 响应中提取第一个候选的文本内容。
func textFromGenaiResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text += string(t)
		}
	}
	return text, nil
}

// Close 关闭底层的 GenAI 客户端连接。
func (g *Gemini) Close() error {
	return g.client.Close()
}
