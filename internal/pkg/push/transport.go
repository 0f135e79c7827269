package push

import (
	"Volunteer/internal/pkg/presence"
	"context"

	"github.com/goccy/go-json"
)

// Transport 将事件推送到房间内的全部在线连接
// 房间无人在线时静默成功；投递是尽力而为，不做持久化
type Transport interface {
	Push(ctx context.Context, room presence.Room, event string, payload any) error
}

// Frame 下行帧
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func Encode(event string, payload any) ([]byte, error) {
	return json.Marshal(Frame{Event: event, Data: payload})
}
