package wire

import (
	"Volunteer/internal/api"
	"Volunteer/internal/api/config"
	"Volunteer/internal/api/handler"
	"Volunteer/internal/job"
	"Volunteer/internal/pkg/cron"
	"Volunteer/internal/pkg/kafka"
	"Volunteer/internal/pkg/mongo"
	"Volunteer/internal/pkg/presence"
	"Volunteer/internal/pkg/push"
	"Volunteer/internal/pkg/redis"
	"Volunteer/internal/repository"
	"Volunteer/internal/service"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	Registry     *presence.Registry
	Bus          *push.RedisBus // local 模式下为 nil
	CronMgr      *cron.Manager
	KafkaManager *kafka.ConsumerManager // 未开启时为 nil

	pushers []interface{ Wait() }
}

// WaitPushes 等待所有后台推送结束
func (a *ApplicationContainer) WaitPushes() {
	for _, p := range a.pushers {
		p.Wait()
	}
}

func BuildApplication(db *gorm.DB, mongoDB *mongodrv.Database, cfg *config.Config) (*ApplicationContainer, error) {
	imCfg := cfg.IM
	pushTimeout := time.Duration(imCfg.PushTimeout) * time.Millisecond
	storeTimeout := time.Duration(imCfg.StoreTimeout) * time.Millisecond

	// 推送通道
	registry := presence.NewRegistry()
	var (
		transport push.Transport
		bus       *push.RedisBus
	)
	switch imCfg.Transport {
	case "local":
		transport = push.NewLocalBus(registry)
	case "redis", "":
		bus = push.NewRedisBus(registry)
		transport = bus
	default:
		return nil, fmt.Errorf("unknown im transport %q", imCfg.Transport)
	}

	// 存储
	userRepo := repository.NewUserRepo(db)
	eventRepo := repository.NewEventRepo(db)
	ledgerRepo := repository.NewUnreadLedgerRepo(db)
	messageRepo := mongo.NewMessageRepo(mongoDB)
	eventChatRepo := mongo.NewEventChatRepo(mongoDB)
	notificationRepo := mongo.NewNotificationRepo(mongoDB)
	dirtySet := redis.NewLedgerDirtySet()
	nameCache := redis.NewDisplayNameCache(time.Duration(imCfg.DisplayNameCache) * time.Second)

	// 业务
	store := service.NewMessageStore(messageRepo, storeTimeout)
	directory := service.NewUserDirectory(userRepo, nameCache)
	dispatcher := service.NewDispatcherService(store, ledgerRepo, directory, transport, dirtySet, pushTimeout)
	readSync := service.NewReadSyncService(store, ledgerRepo, transport, dirtySet, pushTimeout)
	notifications := service.NewNotificationService(notificationRepo, transport, storeTimeout, pushTimeout)
	eventChat := service.NewEventChatService(eventRepo, eventChatRepo, directory, notifications, transport, storeTimeout, pushTimeout, imCfg.AppendRetries)
	query := service.NewChatQueryService(store, ledgerRepo, directory, readSync, storeTimeout)
	reconcile := service.NewLedgerReconcileService(store, ledgerRepo, storeTimeout)

	handlers := &api.HandlersGroup{
		IMHandler:           handler.NewIMHandler(dispatcher, readSync, query),
		EventChatHandler:    handler.NewEventChatHandler(eventChat),
		NotificationHandler: handler.NewNotificationHandler(notifications),
		WsHandler: handler.NewWsHandler(registry, dispatcher, readSync, eventChat, handler.WsOptions{
			SendBuffer:   imCfg.SendBuffer,
			WriteWait:    time.Duration(imCfg.WriteWait) * time.Second,
			PongWait:     time.Duration(imCfg.PongWait) * time.Second,
			AllowOrigins: cfg.Server.AllowOrigins,
		}),
	}
	router := api.SetupRouter(handlers, cfg.Server.AllowOrigins)

	// 定时任务
	reconcileJob := job.NewLedgerReconcileJob(reconcile, dirtySet, imCfg.ReconcileBatch)
	cronMgr := cron.NewCronManager(imCfg.ReconcileSpec, reconcileJob)

	kafkaMgr, err := kafka.NewConsumerManager(cfg, eventChat)
	if err != nil {
		return nil, err
	}

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		Registry:     registry,
		Bus:          bus,
		CronMgr:      cronMgr,
		KafkaManager: kafkaMgr,
		pushers:      []interface{ Wait() }{dispatcher, readSync, eventChat, notifications},
	}, nil
}
