package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const notificationCollection = "notifications"

type NotificationRepo interface {
	CreateNotification(ctx context.Context, n *Notification) error
	GetNotificationList(ctx context.Context, receiverID uint64, kind string, limit, offset int64) ([]*Notification, error)
	MarkAsRead(ctx context.Context, receiverID uint64, id primitive.ObjectID) (bool, error)
	MarkAllAsRead(ctx context.Context, receiverID uint64) (int64, error)
	GetUnreadCount(ctx context.Context, receiverID uint64) (int64, error)
}

type notificationRepoImpl struct {
	col *mongo.Collection
}

func NewNotificationRepo(db *mongo.Database) NotificationRepo {
	return &notificationRepoImpl{
		col: db.Collection(notificationCollection),
	}
}

// CreateNotification 插入新通知
func (s *notificationRepoImpl) CreateNotification(ctx context.Context, n *Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, n)
	return err
}

// GetNotificationList 分页获取通知 (按时间倒序)，kind 为空时不过滤类型
func (s *notificationRepoImpl) GetNotificationList(ctx context.Context, receiverID uint64, kind string, limit, offset int64) ([]*Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := s.col.Find(ctx, notificationListFilter(receiverID, kind), opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	list := make([]*Notification, 0)
	if err = cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// MarkAsRead 标记单条已读，已读过返回 false; 不存在或不属于该用户返回 ErrNoDocuments
func (s *notificationRepoImpl) MarkAsRead(ctx context.Context, receiverID uint64, id primitive.ObjectID) (bool, error) {
	filter := bson.M{"_id": id, "receiver_id": receiverID}
	update := bson.M{"$set": bson.M{"is_read": true}}
	result, err := s.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	if result.MatchedCount == 0 {
		return false, mongo.ErrNoDocuments
	}
	return result.ModifiedCount == 1, nil
}

// MarkAllAsRead 一键清除未读，返回本次标记的条数
func (s *notificationRepoImpl) MarkAllAsRead(ctx context.Context, receiverID uint64) (int64, error) {
	update := bson.M{"$set": bson.M{"is_read": true}}
	result, err := s.col.UpdateMany(ctx, unreadNotificationFilter(receiverID), update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// GetUnreadCount 未读通知总数
func (s *notificationRepoImpl) GetUnreadCount(ctx context.Context, receiverID uint64) (int64, error) {
	return s.col.CountDocuments(ctx, unreadNotificationFilter(receiverID))
}

func notificationListFilter(receiverID uint64, kind string) bson.M {
	filter := bson.M{"receiver_id": receiverID}
	if kind != "" {
		filter["type"] = kind
	}
	return filter
}

func unreadNotificationFilter(receiverID uint64) bson.M {
	return bson.M{"receiver_id": receiverID, "is_read": false}
}
