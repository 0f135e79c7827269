package model

import "time"

// UnreadLedger 未读账本: (owner, counterpart) -> 未读数
// 是消息已读回执的缓存，以 MongoDB 中的 read_by 为准
type UnreadLedger struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID       uint64    `gorm:"not null;uniqueIndex:idx_owner_counterpart" json:"ownerId"`
	CounterpartID uint64    `gorm:"not null;uniqueIndex:idx_owner_counterpart" json:"counterpartId"`
	UnreadCount   uint64    `gorm:"not null;default:0" json:"unreadCount"`
	LastMessageAt time.Time `gorm:"index" json:"lastMessageAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (UnreadLedger) TableName() string { return "unread_ledger" }
