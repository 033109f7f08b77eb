package redis

import (
	"context"
	"fmt"
	"log"

	"github.com/go-redis/redis/v8"

	"FlousWise/internal/config"
)

// Connect 创建并返回一个 Redis 客户端实例。
// 客户端由调用方持有并在退出时关闭，不使用包级单例。
func Connect(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 使用 Ping 检查连接是否成功。
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("无法连接到 Redis: %w", err)
	}

	log.Println("✅ 成功连接到 Redis!")
	return rdb, nil
}

// HealthCheck 检查 Redis 连接的健康状况。
func HealthCheck(ctx context.Context, client *redis.Client) error {
	if client == nil {
		return fmt.Errorf("Redis 客户端未初始化")
	}
	return client.Ping(ctx).Err()
}
