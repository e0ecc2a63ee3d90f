package api

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeadersMiddleware 安全响应头中间件
// 纯 JSON API:响应不内嵌、不加载外部资源、不进缓存
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 防止 MIME 类型嗅探
		c.Header("X-Content-Type-Options", "nosniff")

		// 接口响应不允许被任何页面内嵌
		c.Header("X-Frame-Options", "DENY")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		// 评估单数据携带身份可见性,禁止共享缓存
		c.Header("Cache-Control", "no-store")

		// 不向下游泄露来源地址
		c.Header("Referrer-Policy", "no-referrer")

		// 强制 HTTPS
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")

		c.Next()
	}
}
