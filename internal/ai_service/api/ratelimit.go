package api

import (
	"fmt"
	"time"

	"FlousWise/internal/config"
	"FlousWise/pkg/ratelimiter"
)

// NewRateLimiter 根据配置构建限流器实例。
func NewRateLimiter(cfg *config.RateLimiterConfig) (ratelimiter.RateLimiter, error) {
	switch cfg.Algorithm {
	case "fixedWindow":
		window, err := time.ParseDuration(cfg.FixedWindow.Window)
		if err != nil {
			return nil, fmt.Errorf("无效的限流窗口 '%s': %w", cfg.FixedWindow.Window, err)
		}
		return ratelimiter.NewFixedWindowCounter(cfg.FixedWindow.Limit, window), nil
	case "slidingLog":
		window, err := time.ParseDuration(cfg.SlidingLog.Window)
		if err != nil {
			return nil, fmt.Errorf("无效的限流窗口 '%s': %w", cfg.SlidingLog.Window, err)
		}
		return ratelimiter.NewSlidingWindowLog(cfg.SlidingLog.Limit, window), nil
	case "slidingCounter":
		window, err := time.ParseDuration(cfg.SlidingCounter.Window)
		if err != nil {
			return nil, fmt.Errorf("无效的限流窗口 '%s': %w", cfg.SlidingCounter.Window, err)
		}
		return ratelimiter.NewSlidingWindowCounter(cfg.SlidingCounter.Limit, window, cfg.SlidingCounter.NumBuckets), nil
	case "leakyBucket":
		return ratelimiter.NewLeakyBucket(cfg.LeakyBucket.Rate, cfg.LeakyBucket.Capacity), nil
	case "tokenBucket":
		return ratelimiter.NewTokenBucket(cfg.TokenBucket.Rate, cfg.TokenBucket.Capacity), nil
	default:
		return nil, fmt.Errorf("不支持的限流算法: %s", cfg.Algorithm)
	}
}
