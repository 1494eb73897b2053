package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"smartshelf/common/database"
	commonredis "smartshelf/common/redis"
	"smartshelf/internal/config"
	"smartshelf/internal/grid"
	"smartshelf/internal/httpapi"
	"smartshelf/internal/notifier"
	"smartshelf/internal/repository"
	"smartshelf/internal/uploader"

	"go.uber.org/zap"
)

// DataService 数据服务
// REST API + websocket 推送 + 遥测流消费，一个进程内组装全部依赖
type DataService struct {
	config *config.Config
	logger *zap.Logger

	db          *sql.DB
	redisClient *commonredis.Client

	gridService    *GridService
	streamConsumer *grid.StreamConsumer
	hub            *httpapi.Hub
	server         *http.Server
}

// NewDataService 创建数据服务
func NewDataService(cfg *config.Config, logger *zap.Logger) (*DataService, error) {
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	redisClient := commonredis.NewRedisClient(&cfg.Redis)
	if err := commonredis.Ping(context.Background(), redisClient); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	// 仓库层
	shelfRepo := repository.NewShelfRepository(db)
	loadCellRepo := repository.NewLoadCellRepository(db)
	productRepo := repository.NewProductRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)
	comboRepo := repository.NewComboRepository(db)

	// 网格 + 批量保存
	sender := notifier.NewNotifier(cfg, logger)
	manager := grid.NewManager(cfg, loadCellRepo, productRepo, sender, logger)
	up := uploader.NewUploader(cfg, loadCellRepo, redisClient, logger)
	gridService := NewGridService(cfg, manager, up, logger)
	streamConsumer := grid.NewStreamConsumer(cfg, redisClient, manager, logger)

	// HTTP 层
	hub := httpapi.NewHub(logger)
	notificationService := NewNotificationService(notificationRepo, hub, logger)

	router := httpapi.NewRouter(logger)
	router.RegisterRoutes(
		httpapi.NewShelfHandler(shelfRepo, loadCellRepo, logger),
		httpapi.NewLoadCellHandler(loadCellRepo, gridService, logger),
		httpapi.NewProductHandler(productRepo, logger),
		httpapi.NewComboHandler(comboRepo, logger),
		httpapi.NewNotificationHandler(notificationService, logger),
		httpapi.NewTaskHandler(taskRepo, up, logger),
		httpapi.NewUserHandler(userRepo, logger),
		httpapi.NewRealtimeHandler(cfg, redisClient, logger),
		hub,
	)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return &DataService{
		config:         cfg,
		logger:         logger,
		db:             db,
		redisClient:    redisClient,
		gridService:    gridService,
		streamConsumer: streamConsumer,
		hub:            hub,
		server:         server,
	}, nil
}

// Start 启动服务（阻塞直到 ctx 取消或 HTTP 服务出错）
func (s *DataService) Start(ctx context.Context) error {
	// 网格装载失败不阻塞启动（货架可能尚未建档，API 仍可用）
	if err := s.gridService.Load(ctx, s.config.Shelf.ID); err != nil {
		s.logger.Warn("Failed to load shelf grid on startup",
			zap.String("shelf_id", s.config.Shelf.ID),
			zap.Error(err),
		)
	}

	go func() {
		if err := s.streamConsumer.Start(ctx); err != nil {
			s.logger.Error("Telemetry stream consumer exited", zap.Error(err))
		}
	}()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.config.HTTP.Addr))
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("HTTP server error: %w", err)
	}
}

// Stop 释放资源
func (s *DataService) Stop() {
	if err := s.redisClient.Close(); err != nil {
		s.logger.Warn("Failed to close Redis client", zap.Error(err))
	}
	if err := database.Close(s.db); err != nil {
		s.logger.Warn("Failed to close database", zap.Error(err))
	}

	s.logger.Info("Data service stopped")
}
