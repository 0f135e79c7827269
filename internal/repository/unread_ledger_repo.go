package repository

import (
	"Volunteer/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UnreadLedgerRepo 未读账本
// 所有写操作都是单条原子 SQL，不做 "读整行-改-写回"
type UnreadLedgerRepo interface {
	Increment(ctx context.Context, ownerID, counterpartID uint64) error
	Reset(ctx context.Context, ownerID, counterpartID uint64) (bool, error)
	Set(ctx context.Context, ownerID, counterpartID uint64, count uint64) error
	Get(ctx context.Context, ownerID, counterpartID uint64) (uint64, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]*model.UnreadLedger, error)
	TotalUnread(ctx context.Context, ownerID uint64) (uint64, error)
}

type unreadLedgerRepoImpl struct {
	db *gorm.DB
}

func NewUnreadLedgerRepo(db *gorm.DB) UnreadLedgerRepo {
	return &unreadLedgerRepoImpl{db: db}
}

var ledgerKey = []clause.Column{{Name: "owner_id"}, {Name: "counterpart_id"}}

// Increment 未读数 +1 并刷新最后消息时间; 不存在则插入
func (s *unreadLedgerRepoImpl) Increment(ctx context.Context, ownerID, counterpartID uint64) error {
	now := time.Now()
	entry := &model.UnreadLedger{
		OwnerID:       ownerID,
		CounterpartID: counterpartID,
		UnreadCount:   1,
		LastMessageAt: now,
	}
	return retryOnLockConflict(func() error {
		return s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: ledgerKey,
			DoUpdates: clause.Assignments(map[string]interface{}{
				"unread_count":    gorm.Expr("unread_count + 1"),
				"last_message_at": now,
				"updated_at":      now,
			}),
		}).Create(entry).Error
	})
}

// Reset 清零，返回是否真的发生了变化
func (s *unreadLedgerRepoImpl) Reset(ctx context.Context, ownerID, counterpartID uint64) (bool, error) {
	var changed bool
	err := retryOnLockConflict(func() error {
		result := s.db.WithContext(ctx).Model(&model.UnreadLedger{}).
			Where("owner_id = ? AND counterpart_id = ? AND unread_count <> 0", ownerID, counterpartID).
			Updates(map[string]interface{}{
				"unread_count": 0,
				"updated_at":   time.Now(),
			})
		changed = result.RowsAffected > 0
		return result.Error
	})
	return changed, err
}

// Set 校准为精确值，仅供对账使用
func (s *unreadLedgerRepoImpl) Set(ctx context.Context, ownerID, counterpartID uint64, count uint64) error {
	now := time.Now()
	entry := &model.UnreadLedger{
		OwnerID:       ownerID,
		CounterpartID: counterpartID,
		UnreadCount:   count,
		LastMessageAt: now,
	}
	return retryOnLockConflict(func() error {
		return s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: ledgerKey,
			DoUpdates: clause.Assignments(map[string]interface{}{
				"unread_count": count,
				"updated_at":   now,
			}),
		}).Create(entry).Error
	})
}

// Get 当前未读数，无记录视为 0
func (s *unreadLedgerRepoImpl) Get(ctx context.Context, ownerID, counterpartID uint64) (uint64, error) {
	var entry model.UnreadLedger
	err := s.db.WithContext(ctx).
		Select("unread_count").
		Where("owner_id = ? AND counterpart_id = ?", ownerID, counterpartID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return entry.UnreadCount, nil
}

// ListByOwner 用户的全部账本条目，最近有消息的在前
func (s *unreadLedgerRepoImpl) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.UnreadLedger, error) {
	entries := make([]*model.UnreadLedger, 0)
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("last_message_at DESC").
		Find(&entries).Error
	return entries, err
}

// TotalUnread 全局未读数
func (s *unreadLedgerRepoImpl) TotalUnread(ctx context.Context, ownerID uint64) (uint64, error) {
	var total uint64
	err := s.db.WithContext(ctx).Model(&model.UnreadLedger{}).
		Select("COALESCE(SUM(unread_count), 0)").
		Where("owner_id = ?", ownerID).
		Scan(&total).Error
	return total, err
}
