package api

import (
	"github.com/gin-gonic/gin"

	"FlousWise/internal/config"
)

// SetupRouter 配置和返回一个 Gin 引擎实例。
func SetupRouter(h *Handler, cfg *config.AppConfig) (*gin.Engine, error) {
	// 使用默认中间件 (logger, recovery) 创建一个 Gin 引擎。
	r := gin.Default()

	// 健康检查不鉴权，供容器探针使用。
	r.GET("/health", h.Health)

	// 创建认证中间件实例
	authMiddleware := AuthMiddleware(cfg.Auth.JwtSecret)

	// 使用 v1 版本对 API 进行分组
	apiV1 := r.Group("/api/v1")

	// 按配置挂载限流中间件
	if cfg.Middleware.RateLimiter.Enabled {
		limiter, err := NewRateLimiter(&cfg.Middleware.RateLimiter)
		if err != nil {
			return nil, err
		}
		apiV1.Use(RateLimitMiddleware(limiter))
	}

	apiV1.Use(authMiddleware)
	{
		chat := apiV1.Group("/chat")
		{
			chat.POST("/query", h.Query)
			chat.GET("/conversations", h.Conversations)
			chat.GET("/history/:conversationId", h.History)
		}

		profileGroup := apiV1.Group("/profile")
		{
			profileGroup.POST("/invalidate", h.InvalidateProfile)
		}
	}

	return r, nil
}
