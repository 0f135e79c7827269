package handler

import (
	"errors"
	log "log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const maxFrameSize = 64 * 1024

var (
	errClientClosed = errors.New("websocket client closed")
	errSlowConsumer = errors.New("websocket send buffer full")
)

// WsOptions 单连接参数
type WsOptions struct {
	SendBuffer int
	WriteWait  time.Duration
	PongWait   time.Duration
	// AllowOrigins 为空时不校验 Origin
	AllowOrigins []string
}

// wsClient 一个设备连接，实现 presence.Conn
// 写入只发生在 writePump，Send 只做非阻塞入队
type wsClient struct {
	id     string
	userID uint64
	conn   *websocket.Conn
	opts   WsOptions

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newWsClient(conn *websocket.Conn, userID uint64, opts WsOptions) *wsClient {
	return &wsClient{
		id:     uuid.NewString(),
		userID: userID,
		conn:   conn,
		opts:   opts,
		send:   make(chan []byte, opts.SendBuffer),
		done:   make(chan struct{}),
	}
}

func (c *wsClient) ID() string     { return c.id }
func (c *wsClient) UserID() uint64 { return c.userID }

// Send 缓冲满说明客户端消费不过来，直接断开，由客户端重连后拉取
func (c *wsClient) Send(frame []byte) error {
	select {
	case <-c.done:
		return errClientClosed
	default:
	}

	select {
	case c.send <- frame:
		return nil
	case <-c.done:
		return errClientClosed
	default:
		log.Warn("websocket slow consumer, closing", "conn", c.id, "userID", c.userID)
		c.close()
		return errSlowConsumer
	}
}

func (c *wsClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// readPump 阻塞直到连接断开，帧按到达顺序同步处理
func (c *wsClient) readPump(handle func(data []byte)) {
	defer c.close()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read failed", "conn", c.id, "userID", c.userID, "err", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		handle(data)
	}
}

// writePump 独占写端，同时负责心跳
func (c *wsClient) writePump() {
	ticker := time.NewTicker(c.opts.PongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Warn("websocket write failed", "conn", c.id, "userID", c.userID, "err", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(c.opts.WriteWait))
			return
		}
	}
}
