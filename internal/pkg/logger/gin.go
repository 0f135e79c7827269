package logger

import (
	"Volunteer/internal/api/config"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SetupGin 访问日志与 panic 恢复
// websocket 的 latency 即会话时长，单独标记便于检索
func SetupGin(r *gin.Engine) {
	index := "logstash-volunteer"
	if config.Cfg != nil && config.Cfg.Logstash.Index != "" {
		index = config.Cfg.Logstash.Index
	}

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Output:    LogWriter,
		SkipPaths: []string{"/api/ping"},
		Formatter: func(p gin.LogFormatterParams) string {
			msg := "GIN_ACCESS"
			if p.Request != nil && strings.EqualFold(p.Request.Header.Get("Upgrade"), "websocket") {
				msg = "WS_SESSION"
			}
			userID, _ := p.Keys[UserIDKey].(uint64)

			return fmt.Sprintf(
				`{"time":"%s","level":"INFO","msg":"%s","trace_id":"%s","user_id":%d,"target_index":"%s","method":"%s","path":"%s","status":%d,"latency":"%v","client_ip":"%s"}`+"\n",
				p.TimeStamp.Format(time.RFC3339),
				msg,
				accessTraceID(p),
				userID,
				index,
				p.Method,
				p.Path,
				p.StatusCode,
				p.Latency,
				p.ClientIP,
			)
		},
	}))

	r.Use(gin.Recovery())
}

func accessTraceID(p gin.LogFormatterParams) string {
	if id, ok := p.Keys[TraceIDKey].(string); ok && id != "" {
		return id
	}
	if p.Request != nil {
		if id, ok := p.Request.Context().Value(TraceIDKey).(string); ok {
			return id
		}
	}
	return ""
}
