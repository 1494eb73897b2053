package telemetry

import (
	"context"

	commonredis "smartshelf/common/redis"
	"smartshelf/internal/config"
	"smartshelf/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// AttachStreamPublisher 注册流发布订阅
// 快照每次更新后把规范化记录发布到 Redis Streams，数据服务经消费者组消费。
// 发布失败只记录，不影响快照写入
func AttachStreamPublisher(store *Store, redisClient *redis.Client, cfg *config.Config, logger *zap.Logger) {
	store.Subscribe(func(record models.TelemetryRecord) {
		if _, err := commonredis.PublishJSONToStream(context.Background(), redisClient, cfg.Telemetry.Stream.Name, record); err != nil {
			logger.Error("Failed to publish telemetry record to stream",
				zap.String("kind", record.Kind),
				zap.Error(err),
			)
		}
	})
}
