package service

import (
	"Volunteer/internal/api/dto"
	"Volunteer/internal/model"
	"Volunteer/internal/pkg/mongo"
	"Volunteer/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"time"
)

// ChatQueryService 联系人、会话与未读查询
type ChatQueryService interface {
	ListSenders(ctx context.Context, userID uint64) ([]*dto.SenderDTO, error)
	GetConversation(ctx context.Context, userID, counterpartID uint64) ([]*dto.MessageDTO, error)
	Inbox(ctx context.Context, userID uint64) ([]*dto.MessageDTO, error)
	Unread(ctx context.Context, userID uint64) (*dto.UnreadDTO, error)
}

type chatQueryServiceImpl struct {
	store     MessageStore
	ledger    repository.UnreadLedgerRepo
	directory UserDirectory
	readSync  ReadSyncService
	timeout   time.Duration
}

func NewChatQueryService(
	store MessageStore,
	ledger repository.UnreadLedgerRepo,
	directory UserDirectory,
	readSync ReadSyncService,
	storeTimeout time.Duration,
) ChatQueryService {
	return &chatQueryServiceImpl{
		store:     store,
		ledger:    ledger,
		directory: directory,
		readSync:  readSync,
		timeout:   storeTimeout,
	}
}

// ListSenders 给当前用户发过消息的人，按最近一条消息倒序
func (s *chatQueryServiceImpl) ListSenders(ctx context.Context, userID uint64) ([]*dto.SenderDTO, error) {
	inbox, err := s.store.FindInbox(ctx, userID)
	if err != nil {
		return nil, err
	}

	latest := make(map[uint64]*mongo.Message)
	order := make([]uint64, 0)
	for _, msg := range inbox {
		if _, ok := latest[msg.SenderID]; ok {
			continue
		}
		latest[msg.SenderID] = msg
		order = append(order, msg.SenderID)
	}

	unread, err := s.unreadByCounterpart(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := s.directory.DisplayNames(ctx, order)

	out := make([]*dto.SenderDTO, 0, len(order))
	for _, senderID := range order {
		msg := latest[senderID]
		out = append(out, &dto.SenderDTO{
			UserID:        senderID,
			Name:          names[senderID],
			LastMessage:   msg.Text,
			LastMessageAt: msg.CreatedAt,
			UnreadCount:   unread[senderID],
		})
	}
	return out, nil
}

// GetConversation 打开会话即视为已读，已读失败不影响返回消息
func (s *chatQueryServiceImpl) GetConversation(ctx context.Context, userID, counterpartID uint64) ([]*dto.MessageDTO, error) {
	if counterpartID == 0 {
		return nil, ErrInvalidID
	}

	if _, err := s.readSync.MarkConversationRead(ctx, userID, counterpartID); err != nil {
		log.WarnContext(ctx, "mark conversation read failed", "counterpart", counterpartID, "err", err)
	}

	messages, err := s.store.ListConversation(ctx, userID, counterpartID)
	if err != nil {
		return nil, err
	}
	return s.toDTOs(ctx, messages), nil
}

func (s *chatQueryServiceImpl) Inbox(ctx context.Context, userID uint64) ([]*dto.MessageDTO, error) {
	messages, err := s.store.FindInbox(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.toDTOs(ctx, messages), nil
}

func (s *chatQueryServiceImpl) Unread(ctx context.Context, userID uint64) (*dto.UnreadDTO, error) {
	storeCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	entries, err := s.ledger.ListByOwner(storeCtx, userID)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	total, err := s.ledger.TotalUnread(storeCtx, userID)
	if err != nil {
		return nil, fmt.Errorf("total unread: %w", err)
	}

	out := &dto.UnreadDTO{Total: total, Items: make([]dto.UnreadEntryDTO, 0, len(entries))}
	for _, e := range entries {
		if e.UnreadCount == 0 {
			continue
		}
		out.Items = append(out.Items, dto.UnreadEntryDTO{
			CounterpartID: e.CounterpartID,
			UnreadCount:   e.UnreadCount,
			LastMessageAt: e.LastMessageAt,
		})
	}
	return out, nil
}

func (s *chatQueryServiceImpl) unreadByCounterpart(ctx context.Context, userID uint64) (map[uint64]uint64, error) {
	storeCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	entries, err := s.ledger.ListByOwner(storeCtx, userID)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	return ledgerCounts(entries), nil
}

func ledgerCounts(entries []*model.UnreadLedger) map[uint64]uint64 {
	counts := make(map[uint64]uint64, len(entries))
	for _, e := range entries {
		counts[e.CounterpartID] = e.UnreadCount
	}
	return counts
}

func (s *chatQueryServiceImpl) toDTOs(ctx context.Context, messages []*mongo.Message) []*dto.MessageDTO {
	senders := make([]uint64, 0, len(messages))
	for _, msg := range messages {
		senders = append(senders, msg.SenderID)
	}
	names := s.directory.DisplayNames(ctx, senders)

	out := make([]*dto.MessageDTO, 0, len(messages))
	for _, msg := range messages {
		out = append(out, toMessageDTO(msg, names[msg.SenderID]))
	}
	return out
}
