package middleware

import (
	"Volunteer/internal/pkg/logger"
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	traceHeader   = "X-Trace-ID"
	maxTraceIDLen = 64
)

// TraceMiddleware 透传上游 trace_id，缺失或异常时重新生成
// 浏览器建立 websocket 时无法自定义 header，允许从 query 携带
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(traceHeader)
		if traceID == "" {
			traceID = c.Query("trace_id")
		}
		if traceID == "" || len(traceID) > maxTraceIDLen {
			traceID = uuid.NewString()
		}

		c.Set(logger.TraceIDKey, traceID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.TraceIDKey, traceID))

		c.Header(traceHeader, traceID)
		c.Next()
	}
}
