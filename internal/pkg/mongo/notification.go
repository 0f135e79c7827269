package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	NotifyEvent  = "event"  // 活动相关: 入队、活动变更
	NotifySystem = "system" // 系统公告
)

// Notification 站内通知
type Notification struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ReceiverID uint64             `bson:"receiver_id" json:"receiverId"`
	Type       string             `bson:"type" json:"type"`
	TargetID   uint64             `bson:"target_id" json:"targetId"` // 关联的活动ID，系统通知为 0
	Content    string             `bson:"content" json:"content"`
	IsRead     bool               `bson:"is_read" json:"isRead"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
}
