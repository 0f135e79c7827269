package logger

import (
	"context"
	log "log/slog"
)

// TraceIDKey 定义 Context 中的 Key
const TraceIDKey = "trace_id"

// UserIDKey 鉴权中间件写入的当前用户
const UserIDKey = "user_id"

// ContextHandler 包装器，用于从 ctx 中提取 trace_id 与 user_id
type ContextHandler struct {
	log.Handler
}

func (h *ContextHandler) Handle(ctx context.Context, r log.Record) error {
	if ctx != nil {
		if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
			r.AddAttrs(log.String(TraceIDKey, traceID))
		}
		if userID, ok := ctx.Value(UserIDKey).(uint64); ok {
			r.AddAttrs(log.Uint64(UserIDKey, userID))
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return &ContextHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) log.Handler {
	return &ContextHandler{h.Handler.WithGroup(name)}
}

// WithTrace 为后台 goroutine 复制 trace_id，脱离请求的取消信号
func WithTrace(parent context.Context) context.Context {
	ctx := context.Background()
	if parent == nil {
		return ctx
	}
	if traceID, ok := parent.Value(TraceIDKey).(string); ok {
		ctx = context.WithValue(ctx, TraceIDKey, traceID)
	}
	if userID, ok := parent.Value(UserIDKey).(uint64); ok {
		ctx = context.WithValue(ctx, UserIDKey, userID)
	}
	return ctx
}
