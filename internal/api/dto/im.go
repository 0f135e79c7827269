package dto

import (
	"time"

	"github.com/goccy/go-json"
)

// SendMessageReq 发送消息 (单聊或多人)
type SendMessageReq struct {
	Recipients []uint64 `json:"recipients" binding:"required,min=1,dive,gt=0"`
	Text       string   `json:"text" binding:"required"`
}

// ReplyReq 回复某个发送者
type ReplyReq struct {
	RecipientID uint64 `json:"recipientId" binding:"required,gt=0"`
	Text        string `json:"text" binding:"required"`
}

// BroadcastReq 活动群聊广播，recipients 为空时发给除自己外的全体成员
type BroadcastReq struct {
	Text       string   `json:"text" binding:"required"`
	MediaURL   string   `json:"mediaUrl" binding:"omitempty,url"`
	Recipients []uint64 `json:"recipients" binding:"omitempty,dive,gt=0"`
}

// MessageDTO 消息读模型，推送 receiveMessage 与接口返回共用
type MessageDTO struct {
	ID         string      `json:"id"`
	SenderID   uint64      `json:"senderId"`
	SenderName string      `json:"senderName"`
	Recipients []uint64    `json:"recipients"`
	Text       string      `json:"text"`
	Kind       string      `json:"kind"`
	ReadBy     []ReadByDTO `json:"readBy"`
	CreatedAt  time.Time   `json:"createdAt"`
}

type ReadByDTO struct {
	UserID uint64    `json:"userId"`
	ReadAt time.Time `json:"readAt"`
}

// ReadReceiptDTO 已读回执推送 (messageRead)，同一对话批量合并
type ReadReceiptDTO struct {
	ReaderID   uint64    `json:"readerId"`
	MessageIDs []string  `json:"messageIds"`
	ReadAt     time.Time `json:"readAt"`
}

// SenderDTO 联系人列表项
type SenderDTO struct {
	UserID        uint64    `json:"userId"`
	Name          string    `json:"name"`
	LastMessage   string    `json:"lastMessage"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	UnreadCount   uint64    `json:"unreadCount"`
}

// UnreadDTO 未读汇总
type UnreadDTO struct {
	Total uint64           `json:"total"`
	Items []UnreadEntryDTO `json:"items"`
}

type UnreadEntryDTO struct {
	CounterpartID uint64    `json:"counterpartId"`
	UnreadCount   uint64    `json:"unreadCount"`
	LastMessageAt time.Time `json:"lastMessageAt"`
}

// EventChatDTO 用户可参与的活动群聊
type EventChatDTO struct {
	EventID     uint64    `json:"eventId"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	ManagerID   uint64    `json:"managerId"`
	MemberCount int       `json:"memberCount"`
	IsManager   bool      `json:"isManager"`
}

// EventChatMessageDTO 群聊消息读模型
type EventChatMessageDTO struct {
	EventID    uint64    `json:"eventId"`
	Seq        uint64    `json:"seq"`
	SenderID   uint64    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Text       string    `json:"text"`
	MediaURL   string    `json:"mediaUrl,omitempty"`
	Recipients []uint64  `json:"recipients"`
	CreatedAt  time.Time `json:"createdAt"`
}

// WsFrame 上行帧，data 按 event 延迟解码
type WsFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type WsEventChatReq struct {
	EventID uint64 `json:"eventId" validate:"required,gt=0"`
}

type WsMarkAsReadReq struct {
	MessageID string `json:"messageId" validate:"required,len=24,hexadecimal"`
}

type WsSendMessageReq struct {
	Recipients []uint64 `json:"recipients" validate:"required,min=1,dive,gt=0"`
	Text       string   `json:"text" validate:"required"`
}

type WsBroadcastReq struct {
	EventID    uint64   `json:"eventId" validate:"required,gt=0"`
	Text       string   `json:"text" validate:"required"`
	MediaURL   string   `json:"mediaUrl" validate:"omitempty,url"`
	Recipients []uint64 `json:"recipients" validate:"omitempty,dive,gt=0"`
}

// WsErrorDTO 下行错误帧
type WsErrorDTO struct {
	Event   string `json:"event"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}
