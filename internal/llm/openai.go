package llm

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/meguminnnnnnnnn/go-openai"

	"FlousWise/internal/models"
)

// OpenAI 是一个用于 OpenAI API 的 LLM 客户端。
type OpenAI struct {
	client *openai.Client // OpenAI 客户端实例。
	model  string         // 要使用的模型名称。
}

var _ LLM = (*OpenAI)(nil)

// NewOpenAI 创建一个新的 OpenAI 客户端。
func NewOpenAI(apiKey, model string) (*OpenAI, error) {
	config := openai.DefaultConfig(apiKey)
	client := openai.NewClientWithConfig(config)
	return &OpenAI{client: client, model: model}, nil
}

// GenerateContent 使用 OpenAI API 生成内容。
func (o *OpenAI) GenerateContent(ctx context.Context, req *models.GenerateRequest) (*models.GenerateResponse, error) {
	resp, err := o.client.CreateChatCompletion(ctx, o.toOpenAIRequest(req, false))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}
	return &models.GenerateResponse{
		Text:  resp.Choices[0].Message.Content,
		Model: resp.Model,
		Done:  true,
	}, nil
}

// GenerateContentStream 使用 OpenAI API 以流式方式生成内容。
func (o *OpenAI) GenerateContentStream(ctx context.Context, req *models.GenerateRequest) (<-chan *models.GenerateResponse, error) {
	stream, err := o.client.CreateChatCompletionStream(ctx, o.toOpenAIRequest(req, true))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion stream: %w", err)
	}

	respChan := make(chan *models.GenerateResponse)
	go func() {
		defer close(respChan)
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				select {
				case respChan <- &models.GenerateResponse{Model: o.model, Done: true}:
				case <-ctx.Done():
				}
				return
			}
			if err != nil {
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			select {
			case respChan <- &models.GenerateResponse{Text: resp.Choices[0].Delta.Content, Model: resp.Model}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return respChan, nil
}

// toOpenAIRequest 将内部请求格式转换为 OpenAI 格式。
func (o *OpenAI) toOpenAIRequest(req *models.GenerateRequest, stream bool) openai.ChatCompletionRequest {
	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	oaReq := openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		Stream:      stream,
	}
	if req.MaxTokens > 0 {
		oaReq.MaxTokens = req.MaxTokens
	}
	return oaReq
}
