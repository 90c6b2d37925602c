// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"genom-go/internal/config"
	"genom-go/internal/handler"
	"genom-go/internal/middleware"
	"genom-go/internal/model"
	"genom-go/internal/pipeline"
	"genom-go/internal/repository"
	"genom-go/internal/service"
	"genom-go/pkg/database"
	"genom-go/pkg/es"
	"genom-go/pkg/kafka"
	"genom-go/pkg/log"
	"genom-go/pkg/token"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis 与 Elasticsearch
	database.InitMySQL(cfg.Database.MySQL.DSN)
	if cfg.Database.MySQL.AutoMigrate {
		database.Migrate(&model.Order{}, &model.Family{}, &model.Genus{}, &model.Kind{}, &model.Specimen{}, &model.AuditLog{})
	}
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	if err := es.InitES(cfg.Elasticsearch); err != nil {
		log.Errorf("es 初始化失败 %s", err)
		return
	}
	producer := kafka.NewProducer(cfg.Kafka)

	// 4. 初始化 Repository
	taxonomyRepo := repository.NewTaxonomyRepository(database.DB)
	auditRepo := repository.NewAuditRepository(database.DB)
	sessionRepo := repository.NewEditSessionRepository(database.RDB, time.Duration(cfg.Editor.SessionTTLMinutes)*time.Minute)
	optionCache := repository.NewOptionCacheRepository(database.RDB, time.Duration(cfg.Editor.OptionCacheTTLSeconds)*time.Second)

	// 5. 初始化 Service (依赖注入)；编辑与新建共享同一个会话存储
	jwtManager := token.NewJWTManager(cfg.JWT.Secret)
	sessions := service.NewSessionStore(sessionRepo)
	optionService := service.NewOptionService(taxonomyRepo, optionCache)
	editorService := service.NewEditorService(taxonomyRepo, sessions, optionService, producer, cfg.Editor.StrictSingleEdit)
	createService := service.NewCreateService(taxonomyRepo, sessions, optionService, producer)
	searchService := service.NewSearchService(cfg.Elasticsearch.IndexName)
	auditService := service.NewAuditService(auditRepo)

	// 6. 初始化事件处理管道并启动后台 Kafka 消费者
	processor := pipeline.NewProcessor(cfg.Elasticsearch, auditRepo)
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		kafka.StartConsumer(consumerCtx, cfg.Kafka, processor)
	}()

	// 补齐事件管道之外已经存在的节点
	if cfg.Elasticsearch.ReindexOnStart {
		reindexer := pipeline.NewReindexer(cfg.Elasticsearch, taxonomyRepo)
		go func() {
			if _, err := reindexer.Run(consumerCtx); err != nil {
				log.Errorf("重建搜索索引失败: %v", err)
			}
		}()
	}

	// 7. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "ok"})
	})

	// 8. 注册路由
	apiV1 := r.Group("/api/v1")
	apiV1.Use(middleware.AuthMiddleware(jwtManager))
	handler.RegisterRoutes(apiV1, handler.NewTaxonomyHandler(editorService, createService, optionService),
		handler.NewSearchHandler(searchService), handler.NewAuditHandler(auditService))

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("HTTP 服务器关闭失败: %v", err)
	}

	stopConsumer()
	select {
	case <-consumerDone:
	case <-ctx.Done():
		log.Warnf("等待 Kafka 消费者退出超时")
	}
	if err := producer.Close(); err != nil {
		log.Errorf("关闭 Kafka 生产者失败: %v", err)
	}
	log.Info("服务已优雅关闭")
}
