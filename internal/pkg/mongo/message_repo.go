package mongo

import (
	"context"
	"errors"
	"iter"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const messageCollection = "messages"

type MessageRepo interface {
	SaveMessage(ctx context.Context, msg *Message) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Message, error)
	FindConversation(ctx context.Context, userA, userB uint64) iter.Seq2[*Message, error]
	FindInbox(ctx context.Context, userID uint64) ([]*Message, error)
	FindUnreadFrom(ctx context.Context, counterpart, reader uint64) ([]*Message, error)
	CountUnreadFrom(ctx context.Context, counterpart, reader uint64) (int64, error)
	MarkRead(ctx context.Context, id primitive.ObjectID, reader uint64, at time.Time) (bool, error)
}

type messageRepoImpl struct {
	col *mongo.Collection
}

func NewMessageRepo(db *mongo.Database) MessageRepo {
	return &messageRepoImpl{
		col: db.Collection(messageCollection),
	}
}

// 会话内稳定顺序: 时间升序, 同一时间按插入顺序 (ObjectID 单调)
var chronological = bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}

// SaveMessage 将消息存入 MongoDB，ID 在客户端生成以便调用方立即拿到
func (s *messageRepoImpl) SaveMessage(ctx context.Context, msg *Message) error {
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	if msg.ReadBy == nil {
		msg.ReadBy = []ReadReceipt{}
	}
	_, err := s.col.InsertOne(ctx, msg)
	return err
}

// GetByID 精确查询
func (s *messageRepoImpl) GetByID(ctx context.Context, id primitive.ObjectID) (*Message, error) {
	var msg Message
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// FindConversation 双方往来消息，惰性游标; 每次 range 都会重新查询
func (s *messageRepoImpl) FindConversation(ctx context.Context, userA, userB uint64) iter.Seq2[*Message, error] {
	filter := conversationFilter(userA, userB)
	opts := options.Find().SetSort(chronological)

	return func(yield func(*Message, error) bool) {
		cursor, err := s.col.Find(ctx, filter, opts)
		if err != nil {
			yield(nil, err)
			return
		}
		defer func() {
			_ = cursor.Close(ctx)
		}()

		for cursor.Next(ctx) {
			var msg Message
			if err = cursor.Decode(&msg); err != nil {
				yield(nil, err)
				return
			}
			if !yield(&msg, nil) {
				return
			}
		}
		if err = cursor.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// FindInbox 收件箱，最新的在前
func (s *messageRepoImpl) FindInbox(ctx context.Context, userID uint64) ([]*Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	return s.find(ctx, bson.M{"recipients": userID}, opts)
}

// FindUnreadFrom counterpart 发给 reader 且 reader 尚未回执的消息，按时间升序
func (s *messageRepoImpl) FindUnreadFrom(ctx context.Context, counterpart, reader uint64) ([]*Message, error) {
	return s.find(ctx, unreadFilter(counterpart, reader), options.Find().SetSort(chronological))
}

// CountUnreadFrom 未读账本的真实值
func (s *messageRepoImpl) CountUnreadFrom(ctx context.Context, counterpart, reader uint64) (int64, error) {
	return s.col.CountDocuments(ctx, unreadFilter(counterpart, reader))
}

// MarkRead 幂等追加回执: 已读过返回 false，消息不存在或 reader 不是接收人返回 ErrNoDocuments
// 过滤条件与 $push 在同一次更新内完成，并发调用不会产生重复回执
func (s *messageRepoImpl) MarkRead(ctx context.Context, id primitive.ObjectID, reader uint64, at time.Time) (bool, error) {
	update := bson.M{"$push": bson.M{"read_by": ReadReceipt{UserID: reader, ReadAt: at}}}

	result, err := s.col.UpdateOne(ctx, markReadFilter(id, reader), update)
	if err != nil {
		return false, err
	}
	if result.ModifiedCount == 1 {
		return true, nil
	}

	// 区分 "已读" 与 "不存在 / 非接收人"
	count, err := s.col.CountDocuments(ctx, recipientFilter(id, reader), options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	if count == 0 {
		return false, mongo.ErrNoDocuments
	}
	return false, nil
}

func (s *messageRepoImpl) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*Message, error) {
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	messages := make([]*Message, 0)
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func conversationFilter(userA, userB uint64) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"sender_id": userA, "recipients": userB},
		bson.M{"sender_id": userB, "recipients": userA},
	}}
}

func recipientFilter(id primitive.ObjectID, reader uint64) bson.M {
	return bson.M{"_id": id, "recipients": reader}
}

func markReadFilter(id primitive.ObjectID, reader uint64) bson.M {
	filter := recipientFilter(id, reader)
	filter["read_by.user_id"] = bson.M{"$ne": reader}
	return filter
}

func unreadFilter(counterpart, reader uint64) bson.M {
	return bson.M{
		"sender_id":       counterpart,
		"recipients":      reader,
		"read_by.user_id": bson.M{"$ne": reader},
	}
}

// IsNotFound 统一判断 Mongo 未命中
func IsNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
