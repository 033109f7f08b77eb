package kafka

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"FlousWise/internal/config"
)

// Client 持有 Kafka writer 和管理连接。
// 实例由调用方创建并注入，不使用包级单例。
type Client struct {
	Writer *kafka.Writer
	Conn   *kafka.Conn // 用于管理的连接
	Config *config.KafkaConfig
}

// Connect 连接到 Kafka 并确保聊天事件主题存在。
func Connect(cfg *config.KafkaConfig) (*Client, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("未配置 Kafka brokers")
	}
	if cfg.ChatTopic == "" {
		return nil, fmt.Errorf("未配置 Kafka 聊天事件主题")
	}

	// 1. 建立管理连接
	conn, err := kafka.Dial("tcp", cfg.Brokers[0])
	if err != nil {
		return nil, fmt.Errorf("kafka 初始化连接失败: %w", err)
	}

	// 2. 获取已存在的主题
	partitions, err := conn.ReadPartitions()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("无法读取 Kafka 分区信息: %w", err)
	}
	existingTopics := make(map[string]struct{})
	for _, p := range partitions {
		existingTopics[p.Topic] = struct{}{}
	}

	// 3. 主题不存在时自动创建
	if _, exists := existingTopics[cfg.ChatTopic]; !exists {
		log.Printf("主题 '%s' 不存在，准备创建...", cfg.ChatTopic)
		err = conn.CreateTopics(kafka.TopicConfig{
			Topic:             cfg.ChatTopic,
			NumPartitions:     1, // 使用默认值
			ReplicationFactor: 1, // 使用默认值
		})
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("自动创建 Kafka 主题失败: %w", err)
		}
	}

	// 4. 创建用于发布事件的 Writer
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.ChatTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}

	log.Println("✅ 成功初始化 Kafka 客户端!")
	return &Client{Writer: writer, Conn: conn, Config: cfg}, nil
}

// Close 安全地关闭 Kafka 连接。
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Writer != nil {
		if err := c.Writer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("关闭 Kafka writer 失败: %w", err))
		}
	}
	if c.Conn != nil {
		if err := c.Conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("关闭 Kafka 管理连接失败: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("关闭 Kafka 客户端时发生多个错误: %v", errs)
	}
	return nil
}

// HealthCheck 检查 Kafka 连接的健康状况。
func (c *Client) HealthCheck(ctx context.Context) error {
	if c == nil || c.Conn == nil {
		return fmt.Errorf("kafka 客户端未初始化，无法进行健康检查")
	}
	_, err := c.Conn.Controller()
	return err
}

// GetControllerInfo 返回 Kafka 控制器的信息。
func (c *Client) GetControllerInfo() (string, error) {
	if c == nil || c.Conn == nil {
		return "", fmt.Errorf("kafka 客户端未初始化")
	}
	controller, err := c.Conn.Controller()
	if err != nil {
		return "", err
	}
	return net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)), nil
}
