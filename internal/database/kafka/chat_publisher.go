package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"FlousWise/internal/models"
)

// ChatPublisher 封装了向 Kafka 发布聊天事件的逻辑。
// 发布是尽力而为的：调用方在失败时只记录日志，不影响主回答。
type ChatPublisher struct {
	writer *kafka.Writer
}

// NewChatPublisher 创建一个新的 ChatPublisher 实例。
func NewChatPublisher(client *Client) *ChatPublisher {
	return &ChatPublisher{writer: client.Writer}
}

// Publish 将 ChatEvent 序列化为 JSON 并发送到聊天事件主题。
// 消息以 userId 为 key，保证同一用户的事件落在同一分区。
func (p *ChatPublisher) Publish(ctx context.Context, event *models.ChatEvent) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal chat event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.UserID),
		Value: jsonData,
	})
	if err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close 关闭底层的 writer 连接。
func (p *ChatPublisher) Close() error {
	return p.writer.Close()
}
