package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const eventChatCollection = "event_chats"

type EventChatRepo interface {
	GetChat(ctx context.Context, eventID uint64) (*EventChat, error)
	GetHead(ctx context.Context, eventID uint64) (*EventChat, error)
	EnsureChat(ctx context.Context, eventID uint64, members []uint64) error
	AppendMessage(ctx context.Context, eventID uint64, expectedVersion uint64, msg *EventChatMessage) (bool, error)
}

type eventChatRepoImpl struct {
	col *mongo.Collection
}

func NewEventChatRepo(db *mongo.Database) EventChatRepo {
	return &eventChatRepoImpl{
		col: db.Collection(eventChatCollection),
	}
}

// GetChat 完整群聊 (含消息)，不存在返回 nil
func (s *eventChatRepoImpl) GetChat(ctx context.Context, eventID uint64) (*EventChat, error) {
	var chat EventChat
	err := s.col.FindOne(ctx, bson.M{"_id": eventID}).Decode(&chat)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &chat, nil
}

// GetHead 只取成员与版本号，不拉取消息列表
func (s *eventChatRepoImpl) GetHead(ctx context.Context, eventID uint64) (*EventChat, error) {
	var chat EventChat
	opts := options.FindOne().SetProjection(bson.M{"messages": 0})
	err := s.col.FindOne(ctx, bson.M{"_id": eventID}, opts).Decode(&chat)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &chat, nil
}

// EnsureChat 懒创建群聊并合并成员，成员只增不减
func (s *eventChatRepoImpl) EnsureChat(ctx context.Context, eventID uint64, members []uint64) error {
	if members == nil {
		members = []uint64{}
	}
	update := bson.M{
		"$setOnInsert": bson.M{
			"messages":   bson.A{},
			"version":    uint64(0),
			"created_at": time.Now(),
		},
		"$addToSet": bson.M{"members": bson.M{"$each": members}},
	}
	opts := options.Update().SetUpsert(true)

	_, err := s.col.UpdateOne(ctx, bson.M{"_id": eventID}, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		// 并发 upsert 只会有一个插入成功，另一个重试即为普通更新
		_, err = s.col.UpdateOne(ctx, bson.M{"_id": eventID}, update, opts)
	}
	return err
}

// AppendMessage 版本号守护的追加，版本不符返回 false 由调用方重试
func (s *eventChatRepoImpl) AppendMessage(ctx context.Context, eventID uint64, expectedVersion uint64, msg *EventChatMessage) (bool, error) {
	filter := bson.M{"_id": eventID, "version": expectedVersion}
	update := bson.M{
		"$push": bson.M{"messages": msg},
		"$inc":  bson.M{"version": 1},
	}

	result, err := s.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.MatchedCount == 1, nil
}
