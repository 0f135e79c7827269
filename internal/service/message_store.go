package service

import (
	"Volunteer/internal/pkg/mongo"
	"Volunteer/internal/pkg/util"
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageStore 消息持久化，校验在这里完成，repo 只管存取
type MessageStore interface {
	CreateMessage(ctx context.Context, senderID uint64, recipients []uint64, text string) (*mongo.Message, error)
	GetMessage(ctx context.Context, messageID string) (*mongo.Message, error)
	FindConversation(ctx context.Context, userA, userB uint64) iter.Seq2[*mongo.Message, error]
	ListConversation(ctx context.Context, userA, userB uint64) ([]*mongo.Message, error)
	FindInbox(ctx context.Context, userID uint64) ([]*mongo.Message, error)
	FindUnreadFrom(ctx context.Context, counterpart, reader uint64) ([]*mongo.Message, error)
	CountUnreadFrom(ctx context.Context, counterpart, reader uint64) (uint64, error)
	MarkRead(ctx context.Context, messageID primitive.ObjectID, reader uint64, at time.Time) (bool, error)
}

type messageStoreImpl struct {
	repo    mongo.MessageRepo
	timeout time.Duration
}

func NewMessageStore(repo mongo.MessageRepo, timeout time.Duration) MessageStore {
	return &messageStoreImpl{repo: repo, timeout: timeout}
}

// NormalizeRecipients 去重保序，拒绝空列表与 0 值
func NormalizeRecipients(recipients []uint64) ([]uint64, error) {
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}
	for _, id := range recipients {
		if id == 0 {
			return nil, ErrInvalidID
		}
	}
	return util.UniqueUint64s(recipients), nil
}

// ParseMessageID 十六进制 ObjectID
func ParseMessageID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

func (s *messageStoreImpl) CreateMessage(ctx context.Context, senderID uint64, recipients []uint64, text string) (*mongo.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if senderID == 0 {
		return nil, ErrInvalidID
	}
	recipients, err := NormalizeRecipients(recipients)
	if err != nil {
		return nil, err
	}

	msg := &mongo.Message{
		SenderID:   senderID,
		Recipients: recipients,
		Text:       text,
		Kind:       mongo.KindOf(recipients),
		ReadBy:     []mongo.ReadReceipt{},
		CreatedAt:  time.Now(),
	}

	writeCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err = s.repo.SaveMessage(writeCtx, msg); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}
	return msg, nil
}

func (s *messageStoreImpl) GetMessage(ctx context.Context, messageID string) (*mongo.Message, error) {
	oid, err := ParseMessageID(messageID)
	if err != nil {
		return nil, err
	}

	readCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	msg, err := s.repo.GetByID(readCtx, oid)
	if err != nil {
		if mongo.IsNotFound(err) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("get message: %w", err)
	}
	return msg, nil
}

// FindConversation 游标生命周期跟随调用方 ctx，不套超时
func (s *messageStoreImpl) FindConversation(ctx context.Context, userA, userB uint64) iter.Seq2[*mongo.Message, error] {
	return s.repo.FindConversation(ctx, userA, userB)
}

func (s *messageStoreImpl) ListConversation(ctx context.Context, userA, userB uint64) ([]*mongo.Message, error) {
	readCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	messages := make([]*mongo.Message, 0)
	for msg, err := range s.repo.FindConversation(readCtx, userA, userB) {
		if err != nil {
			return nil, fmt.Errorf("find conversation: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (s *messageStoreImpl) FindInbox(ctx context.Context, userID uint64) ([]*mongo.Message, error) {
	readCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	messages, err := s.repo.FindInbox(readCtx, userID)
	if err != nil {
		return nil, fmt.Errorf("find inbox: %w", err)
	}
	return messages, nil
}

func (s *messageStoreImpl) FindUnreadFrom(ctx context.Context, counterpart, reader uint64) ([]*mongo.Message, error) {
	readCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	messages, err := s.repo.FindUnreadFrom(readCtx, counterpart, reader)
	if err != nil {
		return nil, fmt.Errorf("find unread: %w", err)
	}
	return messages, nil
}

func (s *messageStoreImpl) CountUnreadFrom(ctx context.Context, counterpart, reader uint64) (uint64, error) {
	readCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	n, err := s.repo.CountUnreadFrom(readCtx, counterpart, reader)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return uint64(n), nil
}

// MarkRead 只有真正新增回执时返回 true
func (s *messageStoreImpl) MarkRead(ctx context.Context, messageID primitive.ObjectID, reader uint64, at time.Time) (bool, error) {
	writeCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	ok, err := s.repo.MarkRead(writeCtx, messageID, reader, at)
	if err != nil {
		if mongo.IsNotFound(err) {
			return false, ErrMessageNotFound
		}
		return false, fmt.Errorf("mark read: %w", err)
	}
	return ok, nil
}

func (s *messageStoreImpl) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(ctx, s.timeout)
}

// withTimeout 只给持久化调用加超时，<=0 表示不限
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
