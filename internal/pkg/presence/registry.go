package presence

import (
	"errors"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

var ErrConnClosed = errors.New("connection already left")

// Conn 一个实时连接 (一个设备)
// ID 在进程内唯一且不复用; Leave 之后不得再 Join
type Conn interface {
	ID() string
	UserID() uint64
	Send(frame []byte) error
}

type connState struct {
	mu     sync.Mutex
	rooms  map[Room]struct{}
	closed bool
}

// closedTTL Leave 后保留关闭标记的时长，期间迟到的 Join 返回 ErrConnClosed
const closedTTL = time.Minute

// Registry 房间 -> 连接集合
// 房间条目通过 MapOf.Compute 原子更新 (写时复制)，读取方拿到的是不可变快照；
// 同一连接的 Join/Leave 由该连接自己的互斥锁串行化。没有全局锁。
type Registry struct {
	rooms *xsync.MapOf[Room, map[string]Conn]
	conns *xsync.MapOf[string, *connState]

	closedTTL time.Duration
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: xsync.NewMapOf[Room, map[string]Conn](),
		conns: xsync.NewMapOf[string, *connState](),

		closedTTL: closedTTL,
	}
}

// Join 将连接加入房间，重复加入无副作用
func (r *Registry) Join(room Room, conn Conn) error {
	state, _ := r.conns.LoadOrCompute(conn.ID(), func() *connState {
		return &connState{rooms: make(map[Room]struct{})}
	})

	state.mu.Lock()
	defer state.mu.Unlock()
	if state.closed {
		return ErrConnClosed
	}
	if _, ok := state.rooms[room]; ok {
		return nil
	}

	r.rooms.Compute(room, func(old map[string]Conn, _ bool) (map[string]Conn, bool) {
		next := make(map[string]Conn, len(old)+1)
		for id, c := range old {
			next[id] = c
		}
		next[conn.ID()] = conn
		return next, false
	})
	state.rooms[room] = struct{}{}
	return nil
}

// LeaveRoom 连接主动退出单个房间
func (r *Registry) LeaveRoom(room Room, conn Conn) {
	state, ok := r.conns.Load(conn.ID())
	if !ok {
		return
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if _, ok = state.rooms[room]; !ok {
		return
	}
	r.remove(room, conn.ID())
	delete(state.rooms, room)
}

// Leave 断线时调用: 从所有房间移除，可重复调用
func (r *Registry) Leave(conn Conn) {
	state, ok := r.conns.Load(conn.ID())
	if !ok {
		return
	}

	state.mu.Lock()
	if state.closed {
		state.mu.Unlock()
		return
	}
	state.closed = true
	for room := range state.rooms {
		r.remove(room, conn.ID())
	}
	state.rooms = nil
	state.mu.Unlock()

	// 关闭标记保留一段时间再回收，只删除自己这一份
	id := conn.ID()
	time.AfterFunc(r.closedTTL, func() {
		r.conns.Compute(id, func(old *connState, loaded bool) (*connState, bool) {
			return old, !loaded || old == state
		})
	})
}

// ConnectionsFor 房间内连接的快照，离线时为空
func (r *Registry) ConnectionsFor(room Room) []Conn {
	set, ok := r.rooms.Load(room)
	if !ok {
		return nil
	}
	conns := make([]Conn, 0, len(set))
	for _, c := range set {
		conns = append(conns, c)
	}
	return conns
}

// Rooms 连接当前所在的房间
func (r *Registry) Rooms(conn Conn) []Room {
	state, ok := r.conns.Load(conn.ID())
	if !ok {
		return nil
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	rooms := make([]Room, 0, len(state.rooms))
	for room := range state.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// Count 房间内连接数
func (r *Registry) Count(room Room) int {
	set, _ := r.rooms.Load(room)
	return len(set)
}

// RoomCount 当前非空房间数
func (r *Registry) RoomCount() int {
	return r.rooms.Size()
}

// remove 空房间直接删除条目，不留悬挂 key
func (r *Registry) remove(room Room, connID string) {
	r.rooms.Compute(room, func(old map[string]Conn, loaded bool) (map[string]Conn, bool) {
		if !loaded {
			return nil, true
		}
		if _, ok := old[connID]; !ok {
			return old, len(old) == 0
		}
		if len(old) == 1 {
			return nil, true
		}
		next := make(map[string]Conn, len(old)-1)
		for id, c := range old {
			if id != connID {
				next[id] = c
			}
		}
		return next, false
	})
}
