package logger

import (
	"context"
	log "log/slog"
	"time"

	"go.mongodb.org/mongo-driver/event"
)

const (
	mongoSlowThreshold = 200 * time.Millisecond
	mongoDetailLimit   = 1000
)

// 写命令携带聊天正文，不打印命令体
var mongoWriteCommands = map[string]struct{}{
	"insert":        {},
	"update":        {},
	"findAndModify": {},
}

// NewMongoMonitor 失败与慢命令上报，其余只打 Debug
func NewMongoMonitor() *event.CommandMonitor {
	return &event.CommandMonitor{
		Started: func(ctx context.Context, evt *event.CommandStartedEvent) {
			attrs := []any{
				log.String("command", evt.CommandName),
				log.String("database", evt.DatabaseName),
				log.Int64("request_id", evt.RequestID),
			}
			if _, isWrite := mongoWriteCommands[evt.CommandName]; !isWrite {
				detail := evt.Command.String()
				if len(detail) > mongoDetailLimit {
					detail = detail[:mongoDetailLimit] + "...[truncated]"
				}
				attrs = append(attrs, log.String("cmd_detail", detail))
			}
			log.DebugContext(ctx, "MongoDB Started", attrs...)
		},
		Succeeded: func(ctx context.Context, evt *event.CommandSucceededEvent) {
			attrs := []any{
				log.String("command", evt.CommandName),
				log.Duration("latency", evt.Duration),
				log.Int64("request_id", evt.RequestID),
			}
			if evt.Duration > mongoSlowThreshold {
				log.WarnContext(ctx, "MongoDB Slow", attrs...)
				return
			}
			log.DebugContext(ctx, "MongoDB Success", attrs...)
		},
		Failed: func(ctx context.Context, evt *event.CommandFailedEvent) {
			log.ErrorContext(ctx, "MongoDB Error",
				log.String("command", evt.CommandName),
				log.Duration("latency", evt.Duration),
				log.Int64("request_id", evt.RequestID),
				log.Any("err", evt.Failure),
			)
		},
	}
}
