package main

import (
	"log"

	"github.com/blues/cfl/internal/config"
	"github.com/blues/cfl/internal/database"
	"github.com/blues/cfl/internal/event"
	"github.com/blues/cfl/internal/ledger"
	"github.com/blues/cfl/internal/logger"
	"github.com/blues/cfl/internal/router"
	"github.com/blues/cfl/internal/scheduler"
	"github.com/blues/cfl/internal/store"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	if cfg.Log.Output == "file" {
		fileLogger, err := logger.NewWithFileRotation(logger.ParseLogLevel(cfg.Log.Level), cfg.Log.File)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		logger.SetDefaultLogger(fileLogger)
	} else {
		logger.SetLevel(logger.ParseLogLevel(cfg.Log.Level))
	}
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 初始化事件分发器
	dispatcher, err := event.NewDispatcher(cfg.Event.PoolSize, event.LogProcessor{})
	if err != nil {
		log.Fatalf("Failed to initialize event dispatcher: %v", err)
	}
	defer dispatcher.Release()

	// 初始化账本
	ledgerCore := ledger.New(store.NewGormStore(db), dispatcher, nil)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(ledgerCore)

	// 启动定时任务
	manager := scheduler.Start(db, cfg)
	defer manager.Stop()

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
