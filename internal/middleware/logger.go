package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID 请求 ID 头
const HeaderRequestID = "X-Request-ID"

// RequestID 为每个请求分配 ID, 已携带时沿用
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestId", id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// Logger 日志中间件
func Logger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		if query != "" {
			path = path + "?" + query
		}
		logger.InfoContext(c.Request.Context(), "http request",
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"clientIp", c.ClientIP(),
			"method", c.Request.Method,
			"path", path,
			"requestId", c.GetString("requestId"),
		)
	}
}
