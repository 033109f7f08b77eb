package mongo

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"FlousWise/internal/config"
)

// Connect 创建并返回一个 MongoDB 客户端实例。
// 客户端由调用方持有并在退出时断开，不使用包级单例。
func Connect(ctx context.Context, cfg *config.MongoConfig) (*mongo.Client, error) {
	// 应用连接URI。
	clientOptions := options.Client().ApplyURI(cfg.Address)
	// 如果配置了用户名和密码，则设置认证信息。
	if cfg.Username != "" && cfg.Password != "" {
		clientOptions.SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}

	// 连接操作使用带超时的上下文，避免启动时无限阻塞。
	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	c, err := mongo.Connect(connCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("无法连接到 MongoDB: %w", err)
	}

	// 检查连接是否成功（Ping 数据库）。
	if err = c.Ping(connCtx, nil); err != nil {
		return nil, fmt.Errorf("无法 Ping MongoDB: %w", err)
	}

	log.Println("✅ 成功连接到 MongoDB!")
	return c, nil
}

// HealthCheck 检查 MongoDB 连接的健康状况。
func HealthCheck(ctx context.Context, client *mongo.Client) error {
	if client == nil {
		return fmt.Errorf("MongoDB 客户端未初始化")
	}
	return client.Ping(ctx, nil)
}
