package telemetry

import (
	"context"
	"encoding/json"
	"sync"

	"smartshelf/internal/config"
	"smartshelf/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Snapshot 实时遥测快照（四个独立槽位）
type Snapshot struct {
	Sensor     *models.SensorReading `json:"sensor,omitempty"`
	Quantities []int                 `json:"quantities,omitempty"`
	Tracking   json.RawMessage       `json:"tracking,omitempty"`
	Status     json.RawMessage       `json:"status,omitempty"`
}

// Subscriber 快照变更订阅回调
type Subscriber func(record models.TelemetryRecord)

// Store 遥测快照存储
// 单一持有者：所有写入经互斥锁串行化，镜像到 Redis 供重启恢复
type Store struct {
	config      *config.Config
	redisClient *redis.Client
	logger      *zap.Logger

	mu   sync.RWMutex
	snap Snapshot
	subs []Subscriber
}

// NewStore 创建快照存储
func NewStore(cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) *Store {
	return &Store{
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
	}
}

// Subscribe 注册快照变更订阅（启动阶段调用，不可并发）
func (s *Store) Subscribe(fn Subscriber) {
	s.subs = append(s.subs, fn)
}

// Apply 应用遥测记录到快照
// 同类记录整体覆盖对应槽位（last-write-wins），其余槽位不受影响
func (s *Store) Apply(record models.TelemetryRecord) {
	s.mu.Lock()
	switch record.Kind {
	case models.TelemetryKindSensor:
		s.snap.Sensor = record.Sensor
	case models.TelemetryKindQuantity:
		s.snap.Quantities = record.Quantities
	case models.TelemetryKindTracking:
		s.snap.Tracking = record.Raw
	case models.TelemetryKindStatus:
		s.snap.Status = record.Raw
	}
	s.mu.Unlock()

	s.mirror(record)

	// 锁外通知订阅者
	for _, fn := range s.subs {
		fn(record)
	}
}

// Snapshot 返回当前快照副本
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snap
	if s.snap.Quantities != nil {
		snap.Quantities = make([]int, len(s.snap.Quantities))
		copy(snap.Quantities, s.snap.Quantities)
	}
	return snap
}

// Restore 从 Redis 镜像恢复最近一次快照（键不存在则跳过）
func (s *Store) Restore(ctx context.Context) error {
	cache := s.config.Telemetry.Cache

	s.mu.Lock()
	defer s.mu.Unlock()

	if data, err := s.redisClient.Get(ctx, cache.SensorKey).Bytes(); err == nil {
		var reading models.SensorReading
		if err := json.Unmarshal(data, &reading); err == nil {
			s.snap.Sensor = &reading
		}
	} else if err != redis.Nil {
		return err
	}

	if data, err := s.redisClient.Get(ctx, cache.QuantityKey).Bytes(); err == nil {
		var quantities []int
		if err := json.Unmarshal(data, &quantities); err == nil {
			s.snap.Quantities = quantities
		}
	} else if err != redis.Nil {
		return err
	}

	if data, err := s.redisClient.Get(ctx, cache.TrackingKey).Bytes(); err == nil {
		s.snap.Tracking = json.RawMessage(data)
	} else if err != redis.Nil {
		return err
	}

	if data, err := s.redisClient.Get(ctx, cache.StatusKey).Bytes(); err == nil {
		s.snap.Status = json.RawMessage(data)
	} else if err != redis.Nil {
		return err
	}

	s.logger.Info("Telemetry snapshot restored from Redis")
	return nil
}

// mirror 将槽位内容镜像到 Redis（失败只记录，不影响内存快照）
func (s *Store) mirror(record models.TelemetryRecord) {
	ctx := context.Background()
	cache := s.config.Telemetry.Cache

	var key string
	var value interface{}

	switch record.Kind {
	case models.TelemetryKindSensor:
		key = cache.SensorKey
		value = record.Sensor
	case models.TelemetryKindQuantity:
		key = cache.QuantityKey
		value = record.Quantities
	case models.TelemetryKindTracking:
		key = cache.TrackingKey
		value = record.Raw
	case models.TelemetryKindStatus:
		key = cache.StatusKey
		value = record.Raw
	default:
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("Failed to marshal telemetry snapshot", zap.String("key", key), zap.Error(err))
		return
	}

	if err := s.redisClient.Set(ctx, key, data, 0).Err(); err != nil {
		s.logger.Error("Failed to mirror telemetry snapshot to Redis",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
