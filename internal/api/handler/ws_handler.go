package handler

import (
	"Volunteer/internal/api/dto"
	"Volunteer/internal/pkg/consts"
	"Volunteer/internal/pkg/logger"
	"Volunteer/internal/pkg/presence"
	"Volunteer/internal/pkg/push"
	"Volunteer/internal/pkg/response"
	"Volunteer/internal/pkg/util"
	"Volunteer/internal/service"
	"context"
	"fmt"
	log "log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

type WsHandler struct {
	registry   *presence.Registry
	dispatcher service.DispatcherService
	readSync   service.ReadSyncService
	eventChat  service.EventChatService
	opts       WsOptions
	upgrader   websocket.Upgrader
}

func NewWsHandler(
	registry *presence.Registry,
	dispatcher service.DispatcherService,
	readSync service.ReadSyncService,
	eventChat service.EventChatService,
	opts WsOptions,
) *WsHandler {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 64
	}
	if opts.WriteWait <= 0 {
		opts.WriteWait = 10 * time.Second
	}
	if opts.PongWait <= 0 {
		opts.PongWait = 60 * time.Second
	}
	return &WsHandler{
		registry:   registry,
		dispatcher: dispatcher,
		readSync:   readSync,
		eventChat:  eventChat,
		opts:       opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(opts.AllowOrigins) == 0 || slices.Contains(opts.AllowOrigins, origin)
			},
		},
	}
}

// Connect 鉴权已由中间件完成；连接后自动加入个人房间
func (s *WsHandler) Connect(c *gin.Context) {
	userID := currentUser(c)
	if userID == 0 {
		response.Error(c, service.UnauthorizedError)
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.ErrorContext(c, "WS 协议升级失败", "err", err)
		return
	}

	client := newWsClient(conn, userID, s.opts)
	ctx, cancel := context.WithCancel(logger.WithTrace(c))
	defer cancel()

	if err = s.registry.Join(presence.UserRoom(userID), client); err != nil {
		client.close()
		return
	}
	log.InfoContext(ctx, "用户 WS 连接已建立", "conn", client.ID())

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		client.writePump()
	}()

	client.readPump(func(data []byte) {
		s.handleFrame(ctx, client, data)
	})

	s.registry.Leave(client)
	client.close()
	<-writerDone
	log.InfoContext(ctx, "用户 WS 连接已断开", "conn", client.ID())
}

// handleFrame 单帧失败只回错误帧，不断开连接
func (s *WsHandler) handleFrame(ctx context.Context, client *wsClient, data []byte) {
	var frame dto.WsFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		s.replyError(ctx, client, "", fmt.Errorf("%w: %v", service.ErrParamInvalid, err))
		return
	}

	if err := s.dispatchFrame(ctx, client, &frame); err != nil {
		s.replyError(ctx, client, frame.Event, err)
	}
}

func (s *WsHandler) dispatchFrame(ctx context.Context, client *wsClient, frame *dto.WsFrame) error {
	switch frame.Event {
	case consts.WsJoinEventChat:
		var req dto.WsEventChatReq
		if err := decodeFrame(frame, &req); err != nil {
			return err
		}
		if err := s.eventChat.CheckMember(ctx, req.EventID, client.UserID()); err != nil {
			return err
		}
		return s.registry.Join(presence.EventRoom(req.EventID), client)

	case consts.WsLeaveEventChat:
		var req dto.WsEventChatReq
		if err := decodeFrame(frame, &req); err != nil {
			return err
		}
		s.registry.LeaveRoom(presence.EventRoom(req.EventID), client)
		return nil

	case consts.WsMarkAsRead:
		var req dto.WsMarkAsReadReq
		if err := decodeFrame(frame, &req); err != nil {
			return err
		}
		_, err := s.readSync.MarkMessageRead(ctx, client.UserID(), req.MessageID)
		return err

	case consts.WsSendMessage:
		var req dto.WsSendMessageReq
		if err := decodeFrame(frame, &req); err != nil {
			return err
		}
		_, err := s.dispatcher.SendMessage(ctx, client.UserID(), req.Recipients, req.Text)
		return err

	case consts.WsBroadcastMessage:
		var req dto.WsBroadcastReq
		if err := decodeFrame(frame, &req); err != nil {
			return err
		}
		_, err := s.eventChat.BroadcastToEvent(ctx, client.UserID(), req.EventID, req.Text, req.MediaURL, req.Recipients)
		return err

	default:
		return fmt.Errorf("%w: unknown event %q", service.ErrParamInvalid, frame.Event)
	}
}

func decodeFrame(frame *dto.WsFrame, out any) error {
	if len(frame.Data) == 0 {
		return service.ErrParamInvalid
	}
	if err := json.Unmarshal(frame.Data, out); err != nil {
		return fmt.Errorf("%w: %v", service.ErrParamInvalid, err)
	}
	if err := util.ValidateDTO(out); err != nil {
		return fmt.Errorf("%w: %v", service.ErrParamInvalid, err)
	}
	return nil
}

func (s *WsHandler) replyError(ctx context.Context, client *wsClient, event string, err error) {
	code, message := response.Resolve(err)
	if code == response.InternalServerError {
		log.ErrorContext(ctx, "WS 帧处理失败", "event", event, "err", err)
	}
	frame, encErr := push.Encode(consts.WsError, &dto.WsErrorDTO{Event: event, Code: code, Message: message})
	if encErr != nil {
		return
	}
	_ = client.Send(frame)
}
