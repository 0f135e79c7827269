package service

import (
	"Volunteer/internal/api/dto"
	"Volunteer/internal/pkg/consts"
	"Volunteer/internal/pkg/presence"
	"Volunteer/internal/pkg/push"
	"Volunteer/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"time"
)

// ReadSyncService 已读同步: 回执 -> 账本清零 -> 通知发送方
type ReadSyncService interface {
	MarkConversationRead(ctx context.Context, readerID, counterpartID uint64) ([]string, error)
	MarkMessageRead(ctx context.Context, readerID uint64, messageID string) (bool, error)
	Wait()
}

type readSyncServiceImpl struct {
	asyncPusher
	store  MessageStore
	ledger repository.UnreadLedgerRepo
	dirty  DirtyMarker
}

func NewReadSyncService(
	store MessageStore,
	ledger repository.UnreadLedgerRepo,
	transport push.Transport,
	dirty DirtyMarker,
	pushTimeout time.Duration,
) ReadSyncService {
	return &readSyncServiceImpl{
		asyncPusher: asyncPusher{transport: transport, timeout: pushTimeout},
		store:       store,
		ledger:      ledger,
		dirty:       dirty,
	}
}

// MarkConversationRead 返回本次新增回执的消息 ID，重复调用返回空且无副作用
func (s *readSyncServiceImpl) MarkConversationRead(ctx context.Context, readerID, counterpartID uint64) ([]string, error) {
	if readerID == 0 || counterpartID == 0 {
		return nil, ErrInvalidID
	}

	unread, err := s.store.FindUnreadFrom(ctx, counterpartID, readerID)
	if err != nil {
		return nil, err
	}

	readAt := time.Now()
	transitioned := make([]string, 0, len(unread))
	for _, msg := range unread {
		ok, err := s.store.MarkRead(ctx, msg.ID, readerID, readAt)
		if err != nil {
			if errors.Is(err, ErrMessageNotFound) {
				continue
			}
			s.markDirty(ctx, readerID, counterpartID)
			return nil, err
		}
		if ok {
			transitioned = append(transitioned, msg.ID.Hex())
		}
	}

	if err = s.settle(ctx, readerID, counterpartID, true); err != nil {
		return nil, err
	}

	if len(transitioned) > 0 {
		// 已读前落库、已读后才自增的消息会让账本多出一条，交给定时任务按回执复核
		s.markDirty(ctx, readerID, counterpartID)
		s.push(ctx, presence.UserRoom(counterpartID), consts.EventMessageRead, &dto.ReadReceiptDTO{
			ReaderID:   readerID,
			MessageIDs: transitioned,
			ReadAt:     readAt,
		})
	}
	return transitioned, nil
}

// MarkMessageRead 单条已读，非接收人视为消息不存在
func (s *readSyncServiceImpl) MarkMessageRead(ctx context.Context, readerID uint64, messageID string) (bool, error) {
	msg, err := s.store.GetMessage(ctx, messageID)
	if err != nil {
		return false, err
	}

	readAt := time.Now()
	ok, err := s.store.MarkRead(ctx, msg.ID, readerID, readAt)
	if err != nil || !ok {
		return false, err
	}

	if err = s.settle(ctx, readerID, msg.SenderID, false); err != nil {
		log.WarnContext(ctx, "settle ledger after single read failed",
			"owner", readerID, "counterpart", msg.SenderID, "err", err)
	}
	s.markDirty(ctx, readerID, msg.SenderID)

	s.push(ctx, presence.UserRoom(msg.SenderID), consts.EventMessageRead, &dto.ReadReceiptDTO{
		ReaderID:   readerID,
		MessageIDs: []string{msg.ID.Hex()},
		ReadAt:     readAt,
	})
	return true, nil
}

// settle 账本对齐到回执的真实未读数
// reset=true 时无条件清零一次，并发到达的新消息再按剩余数补回并交给定时任务复核
func (s *readSyncServiceImpl) settle(ctx context.Context, ownerID, counterpartID uint64, reset bool) error {
	if reset {
		if _, err := s.ledger.Reset(ctx, ownerID, counterpartID); err != nil {
			s.markDirty(ctx, ownerID, counterpartID)
			return fmt.Errorf("reset ledger: %w", err)
		}
	}

	remaining, err := s.store.CountUnreadFrom(ctx, counterpartID, ownerID)
	if err != nil {
		s.markDirty(ctx, ownerID, counterpartID)
		return err
	}

	switch {
	case remaining > 0:
		if err = s.ledger.Set(ctx, ownerID, counterpartID, remaining); err != nil {
			return fmt.Errorf("settle ledger: %w", err)
		}
		s.markDirty(ctx, ownerID, counterpartID)
	case !reset:
		if _, err = s.ledger.Reset(ctx, ownerID, counterpartID); err != nil {
			return fmt.Errorf("reset ledger: %w", err)
		}
	}
	return nil
}

func (s *readSyncServiceImpl) markDirty(ctx context.Context, ownerID, counterpartID uint64) {
	if err := s.dirty.Mark(ctx, ownerID, counterpartID); err != nil {
		log.ErrorContext(ctx, "mark ledger dirty failed", "owner", ownerID, "counterpart", counterpartID, "err", err)
	}
}
