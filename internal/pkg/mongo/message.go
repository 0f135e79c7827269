package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	KindDirect = "direct"
	KindGroup  = "group"
)

// Message MongoDB 消息明细模型
// 除 ReadBy 只增不减外，写入后不可变
type Message struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SenderID   uint64             `bson:"sender_id" json:"senderId"`
	Recipients []uint64           `bson:"recipients" json:"recipients"`
	Text       string             `bson:"text" json:"text"`
	Kind       string             `bson:"kind" json:"kind"` // direct / group, 由接收人数推导
	ReadBy     []ReadReceipt      `bson:"read_by" json:"readBy"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
}

// ReadReceipt 已读回执, 每个读者至多一条
type ReadReceipt struct {
	UserID uint64    `bson:"user_id" json:"userId"`
	ReadAt time.Time `bson:"read_at" json:"readAt"`
}

// KindOf 由接收人数推导消息类型
func KindOf(recipients []uint64) string {
	if len(recipients) > 1 {
		return KindGroup
	}
	return KindDirect
}

// IsReadBy 是否已有该读者的回执
func (m *Message) IsReadBy(userID uint64) bool {
	for _, r := range m.ReadBy {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// HasRecipient 判断是否为接收人
func (m *Message) HasRecipient(userID uint64) bool {
	for _, r := range m.Recipients {
		if r == userID {
			return true
		}
	}
	return false
}
