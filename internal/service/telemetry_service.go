package service

import (
	"context"
	"fmt"

	commonmqtt "smartshelf/common/mqtt"
	commonredis "smartshelf/common/redis"
	"smartshelf/internal/config"
	"smartshelf/internal/telemetry"

	"go.uber.org/zap"
)

// TelemetryService 遥测接入服务
// MQTT 订阅 → 宽容解码 → 快照 + Redis 镜像 → Redis Streams 发布
type TelemetryService struct {
	config      *config.Config
	logger      *zap.Logger
	mqttClient  *commonmqtt.Client
	redisClient *commonredis.Client
	store       *telemetry.Store
	consumer    *telemetry.Consumer
}

// NewTelemetryService 创建遥测服务
func NewTelemetryService(cfg *config.Config, logger *zap.Logger) (*TelemetryService, error) {
	redisClient := commonredis.NewRedisClient(&cfg.Redis)
	if err := commonredis.Ping(context.Background(), redisClient); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	mqttClient, err := commonmqtt.NewClient(&cfg.MQTT, logger)
	if err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	store := telemetry.NewStore(cfg, redisClient, logger)
	telemetry.AttachStreamPublisher(store, redisClient, cfg, logger)
	consumer := telemetry.NewConsumer(cfg, mqttClient, store, logger)

	return &TelemetryService{
		config:      cfg,
		logger:      logger,
		mqttClient:  mqttClient,
		redisClient: redisClient,
		store:       store,
		consumer:    consumer,
	}, nil
}

// Start 启动服务（恢复快照后开始订阅，阻塞直到 ctx 取消）
func (s *TelemetryService) Start(ctx context.Context) error {
	if err := s.store.Restore(ctx); err != nil {
		s.logger.Warn("Failed to restore telemetry snapshot, starting empty", zap.Error(err))
	}

	if err := s.consumer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start telemetry consumer: %w", err)
	}

	s.logger.Info("Telemetry service started")

	<-ctx.Done()
	return nil
}

// Stop 停止服务
func (s *TelemetryService) Stop() {
	if err := s.consumer.Stop(); err != nil {
		s.logger.Warn("Failed to unsubscribe telemetry topics", zap.Error(err))
	}
	s.mqttClient.Disconnect()
	s.redisClient.Close()

	s.logger.Info("Telemetry service stopped")
}
