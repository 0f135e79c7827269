package service

import (
	"Volunteer/internal/api/dto"
	"Volunteer/internal/pkg/consts"
	"Volunteer/internal/pkg/mongo"
	"Volunteer/internal/pkg/presence"
	"Volunteer/internal/pkg/push"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/copier"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultNoticePageSize = 20
	maxNoticePageSize     = 100
)

// Notifier 给单个用户投递站内通知
type Notifier interface {
	Notify(ctx context.Context, receiverID uint64, kind string, targetID uint64, content string) error
}

// NotificationService 站内通知收件箱
type NotificationService interface {
	Notifier
	GetNotificationList(ctx context.Context, userID uint64, kind string, page, pageSize int) ([]*dto.NotificationDTO, error)
	GetUnreadCount(ctx context.Context, userID uint64) (*dto.NotificationUnreadDTO, error)
	MarkRead(ctx context.Context, userID uint64, noticeID string) error
	MarkAllRead(ctx context.Context, userID uint64) (*dto.NotificationReadAllDTO, error)
	Wait()
}

type notificationServiceImpl struct {
	asyncPusher
	repo    mongo.NotificationRepo
	timeout time.Duration
}

func NewNotificationService(repo mongo.NotificationRepo, transport push.Transport, storeTimeout, pushTimeout time.Duration) NotificationService {
	return &notificationServiceImpl{
		asyncPusher: asyncPusher{transport: transport, timeout: pushTimeout},
		repo:        repo,
		timeout:     storeTimeout,
	}
}

// Notify 先落库再推送到用户房间，离线用户下次拉列表可见
func (s *notificationServiceImpl) Notify(ctx context.Context, receiverID uint64, kind string, targetID uint64, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyText
	}
	if receiverID == 0 {
		return ErrInvalidID
	}
	if kind == "" {
		kind = mongo.NotifySystem
	}

	notice := &mongo.Notification{
		ReceiverID: receiverID,
		Type:       kind,
		TargetID:   targetID,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	storeCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.repo.CreateNotification(storeCtx, notice); err != nil {
		return fmt.Errorf("save notification: %w", err)
	}

	s.push(ctx, presence.UserRoom(receiverID), consts.EventNotification, toNotificationDTO(notice))
	return nil
}

// GetNotificationList 分页拉取，kind 为空返回全部类型
func (s *notificationServiceImpl) GetNotificationList(ctx context.Context, userID uint64, kind string, page, pageSize int) ([]*dto.NotificationDTO, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultNoticePageSize
	}
	pageSize = min(pageSize, maxNoticePageSize)

	storeCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	list, err := s.repo.GetNotificationList(storeCtx, userID, kind, int64(pageSize), int64((page-1)*pageSize))
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	res := make([]*dto.NotificationDTO, 0, len(list))
	for _, n := range list {
		res = append(res, toNotificationDTO(n))
	}
	return res, nil
}

// GetUnreadCount 未读数
func (s *notificationServiceImpl) GetUnreadCount(ctx context.Context, userID uint64) (*dto.NotificationUnreadDTO, error) {
	storeCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	count, err := s.repo.GetUnreadCount(storeCtx, userID)
	if err != nil {
		return nil, fmt.Errorf("count notifications: %w", err)
	}
	return &dto.NotificationUnreadDTO{UnreadCount: count}, nil
}

// MarkRead 标记单条已读，他人的通知视为不存在
func (s *notificationServiceImpl) MarkRead(ctx context.Context, userID uint64, noticeID string) error {
	objectID, err := primitive.ObjectIDFromHex(noticeID)
	if err != nil {
		return ErrInvalidID
	}

	storeCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if _, err = s.repo.MarkAsRead(storeCtx, userID, objectID); err != nil {
		if mongo.IsNotFound(err) {
			return ErrNoticeNotFound
		}
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead 一键已读
func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, userID uint64) (*dto.NotificationReadAllDTO, error) {
	storeCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	n, err := s.repo.MarkAllAsRead(storeCtx, userID)
	if err != nil {
		return nil, fmt.Errorf("mark all notifications read: %w", err)
	}
	return &dto.NotificationReadAllDTO{Marked: n}, nil
}

func toNotificationDTO(n *mongo.Notification) *dto.NotificationDTO {
	out := &dto.NotificationDTO{}
	_ = copier.CopyWithOption(out, n, copier.Option{
		Converters: []copier.TypeConverter{objectIDToHex},
	})
	return out
}
