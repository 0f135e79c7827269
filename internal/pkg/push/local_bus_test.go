package push

import (
	"Volunteer/internal/pkg/presence"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

type recordConn struct {
	id   string
	user uint64
	fail bool

	mu     sync.Mutex
	frames [][]byte
}

func (c *recordConn) ID() string     { return c.id }
func (c *recordConn) UserID() uint64 { return c.user }
func (c *recordConn) Send(frame []byte) error {
	if c.fail {
		return errors.New("send buffer full")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, frame)
	return nil
}

func TestLocalBusPushToAllDevices(t *testing.T) {
	reg := presence.NewRegistry()
	phone := &recordConn{id: "p", user: 5}
	laptop := &recordConn{id: "l", user: 5}
	other := &recordConn{id: "o", user: 6}
	require.NoError(t, reg.Join(presence.UserRoom(5), phone))
	require.NoError(t, reg.Join(presence.UserRoom(5), laptop))
	require.NoError(t, reg.Join(presence.UserRoom(6), other))

	bus := NewLocalBus(reg)
	require.NoError(t, bus.Push(context.Background(), presence.UserRoom(5), "receiveMessage", map[string]any{"text": "hi"}))

	require.Len(t, phone.frames, 1)
	require.Len(t, laptop.frames, 1)
	require.Empty(t, other.frames)

	var f struct {
		Event string         `json:"event"`
		Data  map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(phone.frames[0], &f))
	require.Equal(t, "receiveMessage", f.Event)
	require.Equal(t, "hi", f.Data["text"])
}

func TestLocalBusOfflineRoom(t *testing.T) {
	bus := NewLocalBus(presence.NewRegistry())
	require.NoError(t, bus.Push(context.Background(), presence.EventRoom(1), "receiveMessage", nil))
}

func TestLocalBusSkipsFailingConnection(t *testing.T) {
	reg := presence.NewRegistry()
	bad := &recordConn{id: "bad", user: 1, fail: true}
	good := &recordConn{id: "good", user: 1}
	require.NoError(t, reg.Join(presence.UserRoom(1), bad))
	require.NoError(t, reg.Join(presence.UserRoom(1), good))

	bus := NewLocalBus(reg)
	frame, err := Encode("messageRead", nil)
	require.NoError(t, err)
	require.Equal(t, 1, bus.deliver(context.Background(), presence.UserRoom(1), frame))
	require.Len(t, good.frames, 1)
}

func TestEncodeUnsupportedPayload(t *testing.T) {
	_, err := Encode("x", make(chan int))
	require.Error(t, err)
}
