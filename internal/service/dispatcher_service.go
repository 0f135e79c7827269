package service

import (
	"Volunteer/internal/api/dto"
	"Volunteer/internal/pkg/consts"
	"Volunteer/internal/pkg/presence"
	"Volunteer/internal/pkg/push"
	"Volunteer/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"strings"
	"time"
)

// DirtyMarker 记录账本写失败的 (owner, counterpart)，由定时任务校准
type DirtyMarker interface {
	Mark(ctx context.Context, ownerID, counterpartID uint64) error
}

// DispatcherService 消息投递: 持久化 -> 每个接收人的账本 -> 在线推送
type DispatcherService interface {
	SendMessage(ctx context.Context, senderID uint64, recipients []uint64, text string) (*dto.MessageDTO, error)
	Reply(ctx context.Context, senderID, recipientID uint64, text string) (*dto.MessageDTO, error)
	// Wait 等待已发起的后台推送结束，用于优雅退出
	Wait()
}

type dispatcherServiceImpl struct {
	asyncPusher
	store     MessageStore
	ledger    repository.UnreadLedgerRepo
	directory UserDirectory
	dirty     DirtyMarker
}

func NewDispatcherService(
	store MessageStore,
	ledger repository.UnreadLedgerRepo,
	directory UserDirectory,
	transport push.Transport,
	dirty DirtyMarker,
	pushTimeout time.Duration,
) DispatcherService {
	return &dispatcherServiceImpl{
		asyncPusher: asyncPusher{transport: transport, timeout: pushTimeout},
		store:       store,
		ledger:      ledger,
		directory:   directory,
		dirty:       dirty,
	}
}

// SendMessage 落库成功即返回；单个接收人的账本或推送失败只记录，不回滚消息
func (s *dispatcherServiceImpl) SendMessage(ctx context.Context, senderID uint64, recipients []uint64, text string) (*dto.MessageDTO, error) {
	msg, err := s.store.CreateMessage(ctx, senderID, recipients, text)
	if err != nil {
		return nil, err
	}

	out := toMessageDTO(msg, s.directory.DisplayName(ctx, senderID))

	for _, recipientID := range msg.Recipients {
		if err = s.ledger.Increment(ctx, recipientID, senderID); err != nil {
			log.WarnContext(ctx, "partial delivery",
				"message_id", out.ID, "recipient", recipientID, "stage", "ledger", "err", err)
			if markErr := s.dirty.Mark(ctx, recipientID, senderID); markErr != nil {
				log.ErrorContext(ctx, "mark ledger dirty failed",
					"owner", recipientID, "counterpart", senderID, "err", markErr)
			}
		}
		s.push(ctx, presence.UserRoom(recipientID), consts.EventReceiveMessage, out)
	}

	return out, nil
}

// Reply 对某个发送者的单聊回复
func (s *dispatcherServiceImpl) Reply(ctx context.Context, senderID, recipientID uint64, text string) (*dto.MessageDTO, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if recipientID == 0 {
		return nil, ErrInvalidID
	}
	ok, err := s.directory.Exists(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("lookup recipient: %w", err)
	}
	if !ok {
		return nil, ErrUserNotFound
	}
	return s.SendMessage(ctx, senderID, []uint64{recipientID}, text)
}
