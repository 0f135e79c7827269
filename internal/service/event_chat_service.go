package service

import (
	"Volunteer/internal/api/dto"
	"Volunteer/internal/model"
	"Volunteer/internal/pkg/consts"
	"Volunteer/internal/pkg/mongo"
	"Volunteer/internal/pkg/presence"
	"Volunteer/internal/pkg/push"
	"Volunteer/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"slices"
	"strings"
	"time"
)

// EventChatService 活动群聊
type EventChatService interface {
	BroadcastToEvent(ctx context.Context, senderID, eventID uint64, text, mediaURL string, recipients []uint64) (*dto.EventChatMessageDTO, error)
	GetEventMessages(ctx context.Context, userID, eventID uint64) ([]*dto.EventChatMessageDTO, error)
	ListUserChats(ctx context.Context, userID uint64) ([]*dto.EventChatDTO, error)
	EnsureEventMember(ctx context.Context, eventID, userID uint64) error
	CheckMember(ctx context.Context, eventID, userID uint64) error
	Wait()
}

type eventChatServiceImpl struct {
	asyncPusher
	eventRepo repository.EventRepo
	chatRepo  mongo.EventChatRepo
	directory UserDirectory
	notifier  Notifier
	timeout   time.Duration
	retries   int
}

func NewEventChatService(
	eventRepo repository.EventRepo,
	chatRepo mongo.EventChatRepo,
	directory UserDirectory,
	notifier Notifier,
	transport push.Transport,
	storeTimeout, pushTimeout time.Duration,
	retries int,
) EventChatService {
	return &eventChatServiceImpl{
		asyncPusher: asyncPusher{transport: transport, timeout: pushTimeout},
		eventRepo:   eventRepo,
		chatRepo:    chatRepo,
		directory:   directory,
		notifier:    notifier,
		timeout:     storeTimeout,
		retries:     retries,
	}
}

// BroadcastToEvent 校验全部在写入前完成；追加由版本号守护，冲突时重读版本重试
func (s *eventChatServiceImpl) BroadcastToEvent(ctx context.Context, senderID, eventID uint64, text, mediaURL string, recipients []uint64) (*dto.EventChatMessageDTO, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if senderID == 0 || eventID == 0 {
		return nil, ErrInvalidID
	}

	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.IsParticipant(senderID) {
		return nil, ErrNotEventMember
	}

	members := event.MemberIDs()
	recipients, err = resolveBroadcastRecipients(members, senderID, recipients)
	if err != nil {
		return nil, err
	}

	msg, err := s.appendWithRetry(ctx, eventID, members, &mongo.EventChatMessage{
		SenderID:   senderID,
		Text:       text,
		MediaURL:   strings.TrimSpace(mediaURL),
		Recipients: recipients,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		return nil, err
	}

	out := toEventChatMessageDTO(eventID, msg, s.directory.DisplayName(ctx, senderID))
	for _, recipientID := range recipients {
		s.push(ctx, presence.UserRoom(recipientID), consts.EventReceiveMessage, out)
	}
	s.push(ctx, presence.EventRoom(eventID), consts.EventReceiveMessage, out)
	return out, nil
}

// resolveBroadcastRecipients 缺省为除发送者外的全体成员，显式指定的必须都是成员
func resolveBroadcastRecipients(members []uint64, senderID uint64, recipients []uint64) ([]uint64, error) {
	if len(recipients) == 0 {
		out := make([]uint64, 0, len(members))
		for _, id := range members {
			if id != senderID {
				out = append(out, id)
			}
		}
		return out, nil
	}

	recipients, err := NormalizeRecipients(recipients)
	if err != nil {
		return nil, err
	}
	for _, id := range recipients {
		if !slices.Contains(members, id) {
			return nil, fmt.Errorf("recipient %d is not a member: %w", id, ErrParamInvalid)
		}
	}
	return recipients, nil
}

func (s *eventChatServiceImpl) appendWithRetry(ctx context.Context, eventID uint64, members []uint64, msg *mongo.EventChatMessage) (*mongo.EventChatMessage, error) {
	storeCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.chatRepo.EnsureChat(storeCtx, eventID, members); err != nil {
		return nil, fmt.Errorf("ensure event chat: %w", err)
	}

	for attempt := 0; attempt <= s.retries; attempt++ {
		head, err := s.chatRepo.GetHead(storeCtx, eventID)
		if err != nil {
			return nil, fmt.Errorf("load event chat head: %w", err)
		}
		if head == nil {
			return nil, fmt.Errorf("event chat %d vanished after ensure", eventID)
		}

		msg.Seq = head.Version + 1
		ok, err := s.chatRepo.AppendMessage(storeCtx, eventID, head.Version, msg)
		if err != nil {
			return nil, fmt.Errorf("append event chat: %w", err)
		}
		if ok {
			return msg, nil
		}
		log.DebugContext(ctx, "event chat version conflict", "event_id", eventID, "version", head.Version, "attempt", attempt)
	}
	return nil, ErrConcurrentUpdate
}

// GetEventMessages 仅成员可读，群聊未创建时返回空列表
func (s *eventChatServiceImpl) GetEventMessages(ctx context.Context, userID, eventID uint64) ([]*dto.EventChatMessageDTO, error) {
	if err := s.CheckMember(ctx, eventID, userID); err != nil {
		return nil, err
	}

	storeCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	chat, err := s.chatRepo.GetChat(storeCtx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load event chat: %w", err)
	}

	out := make([]*dto.EventChatMessageDTO, 0)
	if chat == nil {
		return out, nil
	}

	senders := make([]uint64, 0, len(chat.Messages))
	for i := range chat.Messages {
		senders = append(senders, chat.Messages[i].SenderID)
	}
	names := s.directory.DisplayNames(ctx, senders)

	for i := range chat.Messages {
		m := &chat.Messages[i]
		out = append(out, toEventChatMessageDTO(eventID, m, names[m.SenderID]))
	}
	return out, nil
}

// ListUserChats 用户作为管理者或成员的活动
func (s *eventChatServiceImpl) ListUserChats(ctx context.Context, userID uint64) ([]*dto.EventChatDTO, error) {
	storeCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	events, err := s.eventRepo.GetEventsByUser(storeCtx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user events: %w", err)
	}

	out := make([]*dto.EventChatDTO, 0, len(events))
	for _, e := range events {
		out = append(out, &dto.EventChatDTO{
			EventID:     e.ID,
			Title:       e.Title,
			Date:        e.Date,
			ManagerID:   e.CreatedBy,
			MemberCount: len(e.MemberIDs()),
			IsManager:   e.CreatedBy == userID,
		})
	}
	return out, nil
}

// EnsureEventMember 团队新增成员时扩充群聊成员，群聊不存在则创建
// 只有首次入群才发送入队通知，binlog 重放不会重复通知
func (s *eventChatServiceImpl) EnsureEventMember(ctx context.Context, eventID, userID uint64) error {
	if eventID == 0 || userID == 0 {
		return ErrInvalidID
	}
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return err
	}

	storeCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	head, err := s.chatRepo.GetHead(storeCtx, eventID)
	if err != nil {
		return fmt.Errorf("load event chat: %w", err)
	}
	joined := head == nil || !slices.Contains(head.Members, userID)

	members := append(event.MemberIDs(), userID)
	if err = s.chatRepo.EnsureChat(storeCtx, eventID, members); err != nil {
		return fmt.Errorf("ensure event chat: %w", err)
	}

	if joined && s.notifier != nil && userID != event.CreatedBy {
		content := fmt.Sprintf("你已加入活动「%s」的团队", event.Title)
		if err = s.notifier.Notify(ctx, userID, mongo.NotifyEvent, eventID, content); err != nil {
			log.WarnContext(ctx, "team join notification failed", "event_id", eventID, "user_id", userID, "err", err)
		}
	}
	return nil
}

// CheckMember 管理者或团队成员
func (s *eventChatServiceImpl) CheckMember(ctx context.Context, eventID, userID uint64) error {
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if !event.IsParticipant(userID) {
		return ErrNotEventMember
	}
	return nil
}

func (s *eventChatServiceImpl) loadEvent(ctx context.Context, eventID uint64) (*model.Event, error) {
	storeCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	event, err := s.eventRepo.GetEventById(storeCtx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}
