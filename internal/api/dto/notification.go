package dto

import "time"

// NotificationDTO 站内通知，推送 notification 与接口返回共用
type NotificationDTO struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`     // event / system
	TargetID  uint64    `json:"targetId"` // 关联的活动ID
	Content   string    `json:"content"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// NotificationUnreadDTO 未读通知数
type NotificationUnreadDTO struct {
	UnreadCount int64 `json:"unreadCount"`
}

// NotificationReadAllDTO 一键已读结果
type NotificationReadAllDTO struct {
	Marked int64 `json:"marked"`
}
