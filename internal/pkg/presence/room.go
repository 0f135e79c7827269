package presence

import (
	"fmt"
	"strconv"
	"strings"
)

// RoomKind 房间命名空间，用户与活动 ID 互不冲突
type RoomKind string

const (
	KindUser  RoomKind = "user"
	KindEvent RoomKind = "event"
)

// Room 推送的逻辑地址
type Room struct {
	Kind RoomKind
	ID   uint64
}

func UserRoom(userID uint64) Room {
	return Room{Kind: KindUser, ID: userID}
}

func EventRoom(eventID uint64) Room {
	return Room{Kind: KindEvent, ID: eventID}
}

func (r Room) String() string {
	return string(r.Kind) + ":" + strconv.FormatUint(r.ID, 10)
}

// ParseRoom 解析 "user:42" / "event:7"
func ParseRoom(s string) (Room, error) {
	kind, id, ok := strings.Cut(s, ":")
	if !ok {
		return Room{}, fmt.Errorf("invalid room %q", s)
	}
	switch RoomKind(kind) {
	case KindUser, KindEvent:
	default:
		return Room{}, fmt.Errorf("unknown room kind %q", kind)
	}
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return Room{}, fmt.Errorf("invalid room id %q", id)
	}
	return Room{Kind: RoomKind(kind), ID: n}, nil
}
