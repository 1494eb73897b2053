package grid

import (
	"context"
	"encoding/json"
	"time"

	commonredis "smartshelf/common/redis"
	"smartshelf/internal/config"
	"smartshelf/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// StreamConsumer 遥测流消费者
// 经消费者组消费遥测服务发布的规范化记录，数量记录应用到网格
type StreamConsumer struct {
	config      *config.Config
	redisClient *redis.Client
	manager     *Manager
	logger      *zap.Logger
}

// NewStreamConsumer 创建流消费者
func NewStreamConsumer(cfg *config.Config, redisClient *redis.Client, manager *Manager, logger *zap.Logger) *StreamConsumer {
	return &StreamConsumer{
		config:      cfg,
		redisClient: redisClient,
		manager:     manager,
		logger:      logger,
	}
}

// Start 启动消费循环（阻塞直到 ctx 取消）
// 消费者组创建失败时重试而不是退出，Redis 可能晚于本服务就绪
func (c *StreamConsumer) Start(ctx context.Context) error {
	stream := c.config.Telemetry.Stream

	for {
		err := commonredis.CreateConsumerGroup(ctx, c.redisClient, stream.Name, stream.ConsumerGroup)
		if err == nil {
			break
		}
		c.logger.Error("Failed to create consumer group, retrying",
			zap.String("stream", stream.Name),
			zap.String("group", stream.ConsumerGroup),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(5 * time.Second):
		}
	}

	c.logger.Info("Telemetry stream consumer started",
		zap.String("stream", stream.Name),
		zap.String("group", stream.ConsumerGroup),
		zap.String("consumer", stream.Consumer),
	)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Telemetry stream consumer stopped")
			return nil
		default:
		}

		messages, err := commonredis.ReadFromStream(ctx, c.redisClient, stream.Name, stream.ConsumerGroup, stream.Consumer, stream.BatchSize)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Failed to read from telemetry stream", zap.Error(err))
			continue
		}

		for _, msg := range messages {
			c.handleMessage(ctx, msg)
		}
	}
}

// handleMessage 处理单条流消息（处理后确认，解析失败也确认避免堆积）
func (c *StreamConsumer) handleMessage(ctx context.Context, msg commonredis.StreamMessage) {
	defer func() {
		if err := commonredis.AckMessage(ctx, c.redisClient, c.config.Telemetry.Stream.Name, c.config.Telemetry.Stream.ConsumerGroup, msg.ID); err != nil {
			c.logger.Error("Failed to ack stream message", zap.String("id", msg.ID), zap.Error(err))
		}
	}()

	data, ok := msg.Values["data"].(string)
	if !ok {
		c.logger.Warn("Stream message missing data field", zap.String("id", msg.ID))
		return
	}

	var record models.TelemetryRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		c.logger.Warn("Failed to parse telemetry record", zap.String("id", msg.ID), zap.Error(err))
		return
	}

	if record.Kind == models.TelemetryKindQuantity {
		c.manager.ApplyQuantities(record.Quantities)
	}
}
