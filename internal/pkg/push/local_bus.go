package push

import (
	"Volunteer/internal/pkg/presence"
	"context"
	log "log/slog"
)

// LocalBus 单进程投递，直接写入本机 Registry 的连接
type LocalBus struct {
	registry *presence.Registry
}

func NewLocalBus(registry *presence.Registry) *LocalBus {
	return &LocalBus{registry: registry}
}

func (b *LocalBus) Push(ctx context.Context, room presence.Room, event string, payload any) error {
	frame, err := Encode(event, payload)
	if err != nil {
		return err
	}
	b.deliver(ctx, room, frame)
	return nil
}

// deliver 单个连接失败不影响同房间其他连接
func (b *LocalBus) deliver(ctx context.Context, room presence.Room, frame []byte) int {
	delivered := 0
	for _, conn := range b.registry.ConnectionsFor(room) {
		if err := conn.Send(frame); err != nil {
			log.WarnContext(ctx, "push to connection failed", "room", room.String(), "conn", conn.ID(), "err", err)
			continue
		}
		delivered++
	}
	return delivered
}
