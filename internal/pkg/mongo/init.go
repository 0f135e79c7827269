package mongo

import (
	"Volunteer/internal/api/config"
	"Volunteer/internal/pkg/logger"
	"context"
	"fmt"
	log "log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InitMongo 建立连接并返回 Database 引用，同时初始化索引
func InitMongo(cfg config.MongoConfig) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URL).
		SetMonitor(logger.NewMongoMonitor()),
	)
	if err != nil {
		return nil, err
	}

	if err = client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(cfg.Database)
	if err = ensureIndexes(ctx, db); err != nil {
		return nil, err
	}

	log.Info("MongoDB initialized successfully", "db", cfg.Database)
	return db, nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(messageCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		// 收件箱 & 未读查询
		{Keys: bson.D{{Key: "recipients", Value: 1}, {Key: "sender_id", Value: 1}, {Key: "created_at", Value: 1}}},
		// 会话查询的另一侧
		{Keys: bson.D{{Key: "sender_id", Value: 1}, {Key: "created_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}

	_, err = db.Collection(notificationCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		// 通知列表 & 未读数
		{Keys: bson.D{{Key: "receiver_id", Value: 1}, {Key: "is_read", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create notification indexes: %w", err)
	}
	return nil
}
