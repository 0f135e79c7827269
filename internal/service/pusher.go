package service

import (
	"Volunteer/internal/pkg/logger"
	"Volunteer/internal/pkg/presence"
	"Volunteer/internal/pkg/push"
	"context"
	log "log/slog"
	"sync"
	"time"
)

// asyncPusher 后台推送，脱离请求生命周期但保留 trace_id
// gin.Context 会被复用，必须在启动 goroutine 前取出所需的值
type asyncPusher struct {
	transport push.Transport
	timeout   time.Duration
	wg        sync.WaitGroup
}

func (p *asyncPusher) push(parent context.Context, room presence.Room, event string, payload any) {
	detached := logger.WithTrace(parent)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := withTimeout(detached, p.timeout)
		defer cancel()
		if err := p.transport.Push(ctx, room, event, payload); err != nil {
			log.WarnContext(ctx, "partial delivery", "room", room.String(), "stage", "push", "event", event, "err", err)
		}
	}()
}

// Wait 等待已发起的推送结束
func (p *asyncPusher) Wait() {
	p.wg.Wait()
}
