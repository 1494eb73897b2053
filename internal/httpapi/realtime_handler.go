package httpapi

import (
	"encoding/json"
	"net/http"

	"smartshelf/internal/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RealtimeHandler 实时遥测快照 Handler
// 读取遥测服务镜像在 Redis 的最近一次数据
type RealtimeHandler struct {
	config      *config.Config
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewRealtimeHandler 创建实时快照 Handler
func NewRealtimeHandler(cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		config:      cfg,
		redisClient: redisClient,
		logger:      logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *RealtimeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.GetSnapshot(w, r)
}

// GetSnapshot 查询实时遥测快照（缺失槽位返回 null）
func (h *RealtimeHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cache := h.config.Telemetry.Cache

	type snapshotResponse struct {
		Sensor     json.RawMessage `json:"sensor"`
		Quantities json.RawMessage `json:"quantities"`
		Tracking   json.RawMessage `json:"tracking"`
		Status     json.RawMessage `json:"status"`
	}

	resp := snapshotResponse{}
	for _, slot := range []struct {
		key  string
		dest *json.RawMessage
	}{
		{cache.SensorKey, &resp.Sensor},
		{cache.QuantityKey, &resp.Quantities},
		{cache.TrackingKey, &resp.Tracking},
		{cache.StatusKey, &resp.Status},
	} {
		data, err := h.redisClient.Get(ctx, slot.key).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			h.logger.Error("Failed to read telemetry snapshot", zap.String("key", slot.key), zap.Error(err))
			writeJSON(w, http.StatusOK, Fail("failed to read telemetry snapshot"))
			return
		}
		*slot.dest = data
	}

	writeJSON(w, http.StatusOK, Ok(resp))
}
