package push

import (
	"Volunteer/internal/pkg/consts"
	"Volunteer/internal/pkg/presence"
	"Volunteer/internal/pkg/redis"
	"context"
	"errors"
	log "log/slog"
	"strings"
	"sync"
)

// RedisBus 多实例部署时通过 Redis Pub/Sub 广播帧
// 每个进程只持有一个模式订阅，收到后转交本机 LocalBus
type RedisBus struct {
	local *LocalBus

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRedisBus(registry *presence.Registry) *RedisBus {
	return &RedisBus{local: NewLocalBus(registry)}
}

func (b *RedisBus) Push(ctx context.Context, room presence.Room, event string, payload any) error {
	frame, err := Encode(event, payload)
	if err != nil {
		return err
	}
	return redis.Publish(ctx, consts.IMRoomKey+room.String(), frame)
}

// Start 建立订阅并等待确认，之后的 Push 才能保证被本进程收到
func (b *RedisBus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		return errors.New("redis bus already started")
	}

	pubsub := redis.PSubscribe(ctx, consts.IMRoomPattern)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.done = make(chan struct{})

	go func() {
		defer close(b.done)
		defer func() {
			_ = pubsub.Close()
		}()
		ch := pubsub.Channel()
		for {
			select {
			case <-runCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				room, err := presence.ParseRoom(strings.TrimPrefix(msg.Channel, consts.IMRoomKey))
				if err != nil {
					log.Warn("drop frame on unknown channel", "channel", msg.Channel, "err", err)
					continue
				}
				b.local.deliver(runCtx, room, []byte(msg.Payload))
			}
		}
	}()

	log.Info("redis push bus subscribed", "pattern", consts.IMRoomPattern)
	return nil
}

func (b *RedisBus) Close() {
	b.mu.Lock()
	cancel, done := b.cancel, b.done
	b.cancel = nil
	b.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	log.Info("redis push bus closed")
}
