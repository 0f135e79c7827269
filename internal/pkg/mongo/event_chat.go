package mongo

import (
	"time"
)

// EventChat 活动群聊: 每个活动一份文档，消息只追加
type EventChat struct {
	EventID   uint64             `bson:"_id" json:"eventId"`
	Members   []uint64           `bson:"members" json:"members"`
	Messages  []EventChatMessage `bson:"messages" json:"messages"`
	Version   uint64             `bson:"version" json:"version"` // 等于已追加消息数，乐观锁
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// EventChatMessage 群聊广播消息
type EventChatMessage struct {
	Seq        uint64    `bson:"seq" json:"seq"`
	SenderID   uint64    `bson:"sender_id" json:"senderId"`
	Text       string    `bson:"text" json:"text"`
	MediaURL   string    `bson:"media_url,omitempty" json:"mediaUrl"`
	Recipients []uint64  `bson:"recipients" json:"recipients"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}
