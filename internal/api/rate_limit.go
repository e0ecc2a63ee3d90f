package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mautops/fiche-gin/internal/config"
	"golang.org/x/time/rate"
)

// 限流缺省值,与 config.setDefaults 保持一致
const (
	defaultRateLimitRPS   = 100
	defaultRateLimitBurst = 200
)

// RateLimitMiddleware 全局限流中间件
// 令牌桶参数来自服务器配置,未配置时使用缺省值
func RateLimitMiddleware(cfg *config.ServerConfig) gin.HandlerFunc {
	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = defaultRateLimitRPS
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = defaultRateLimitBurst
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, ErrorResponse{
				Code:    429,
				Message: "too many requests",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
