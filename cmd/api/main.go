package main

import (
	"Volunteer/internal/api/config"
	"Volunteer/internal/pkg/cron"
	"Volunteer/internal/pkg/database"
	"Volunteer/internal/pkg/logger"
	"Volunteer/internal/pkg/mongo"
	"Volunteer/internal/pkg/redis"
	"Volunteer/internal/pkg/security"
	"Volunteer/internal/wire"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

func main() {
	// 加载配置
	if err := config.LoadConfig(); err != nil {
		log.Error("Fatal error: failed to load configuration", "err", err)
		panic(err)
	}
	cfg := config.Cfg

	// 初始化日志
	logger.InitLogger()
	security.Configure(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpireHour)

	// 数据库连接
	dbCfg := cfg.DB
	db, err := database.NewGormDB(&dbCfg)
	if err != nil {
		log.Error("Fatal error: failed to create database connection", "err", err)
		panic(err)
	}
	if err = database.Migrate(db); err != nil {
		log.Error("Fatal error: failed to migrate database", "err", err)
		panic(err)
	}

	// Redis 连接
	if _, err = redis.InitRedis(cfg.Redis); err != nil {
		log.Error("Fatal error: failed to create redis connection", "err", err)
		panic(err)
	}

	// Mongo 连接
	mongoDB, err := mongo.InitMongo(cfg.Mongo)
	if err != nil {
		log.Error("Fatal error: failed to create mongo connection", "err", err)
		panic(err)
	}

	// 依赖注入
	app, err := wire.BuildApplication(db, mongoDB, cfg)
	if err != nil {
		log.Error("Fatal error: failed to create application", "err", err)
		panic(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	// 跨实例推送总线
	if app.Bus != nil {
		if err = app.Bus.Start(ctx); err != nil {
			log.Error("Fatal error: failed to start push bus", "err", err)
			panic(err)
		}
		g.Go(func() error {
			<-ctx.Done()
			app.Bus.Close()
			return nil
		})
	}

	// 定时任务
	if err = cron.InitCron(app.CronMgr); err != nil {
		log.Error("Fatal error: failed to start cron jobs", "err", err)
		panic(err)
	}
	g.Go(func() error {
		<-ctx.Done()
		log.Info("Cron Jobs stopping...")
		app.CronMgr.Stop()
		return nil
	})

	// Kafka 消费者
	if app.KafkaManager != nil {
		g.Go(func() error {
			log.Info("Kafka Consumers starting...")
			return app.KafkaManager.Start(ctx, cfg)
		})
	}

	// HTTP 服务器
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: app.Router,
	}
	g.Go(func() error {
		log.Info("HTTP Server starting...", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// 优雅退出
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-ctx.Done():
		case sig := <-quit:
			log.Info("Received signal, shutting down...", "signal", sig)
			cancel()
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP Server shutdown failed", "err", err)
		}
		return nil
	})

	if err = g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("App exited with error", "err", err)
	}
	// websocket 连接被 Shutdown 忽略，剩余推送在这里收尾
	app.WaitPushes()
	log.Info("App exited successfully.")
}
