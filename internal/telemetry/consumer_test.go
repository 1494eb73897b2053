package telemetry

import (
	"testing"

	"smartshelf/internal/config"
	"smartshelf/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestConsumer(t *testing.T) (*Consumer, *Store, *config.Config, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg, err := config.Load()
	require.NoError(t, err)

	store := NewStore(cfg, client, zap.NewNop())
	AttachStreamPublisher(store, client, cfg, zap.NewNop())
	consumer := NewConsumer(cfg, nil, store, zap.NewNop())
	return consumer, store, cfg, mr
}

// ============ 主题分类 ============

func TestClassifyTopic(t *testing.T) {
	assert.Equal(t, models.TelemetryKindSensor, classifyTopic("shelf/sensor/environment"))
	assert.Equal(t, models.TelemetryKindQuantity, classifyTopic("shelf/loadcell/quantity"))
	assert.Equal(t, models.TelemetryKindTracking, classifyTopic("shelf/tracking/unpaid_customer"))
	assert.Equal(t, models.TelemetryKindStatus, classifyTopic("shelf/status/data"))
	assert.Equal(t, "", classifyTopic("shelf/unrelated/topic"))
}

// ============ 消息处理 ============

func TestConsumer_HandleQuantityMessage(t *testing.T) {
	consumer, store, cfg, mr := newTestConsumer(t)

	err := consumer.HandleMessage("shelf/loadcell/quantity", []byte(`[5, 3, 0, 200]`))
	require.NoError(t, err)

	assert.Equal(t, []int{5, 3, 0, 200}, store.Snapshot().Quantities)

	// 规范化记录已发布到流
	assert.True(t, mr.Exists(cfg.Telemetry.Stream.Name))
}

func TestConsumer_HandleSensorMessage(t *testing.T) {
	consumer, store, _, _ := newTestConsumer(t)

	err := consumer.HandleMessage("shelf/sensor/environment", []byte(`{'id': 'env-1', 'humidity': 45.2, 'light': None}`))
	require.NoError(t, err)

	snap := store.Snapshot()
	require.NotNil(t, snap.Sensor)
	assert.Equal(t, "env-1", snap.Sensor.ID)
	require.NotNil(t, snap.Sensor.Humidity)
	assert.Equal(t, 45.2, *snap.Sensor.Humidity)
	assert.Nil(t, snap.Sensor.Light)
}

func TestConsumer_MalformedPayloadLeavesSnapshotUnchanged(t *testing.T) {
	consumer, store, _, _ := newTestConsumer(t)

	require.NoError(t, consumer.HandleMessage("shelf/loadcell/quantity", []byte(`[5, 3]`)))
	require.NoError(t, consumer.HandleMessage("shelf/loadcell/quantity", []byte(`{"note":"nothing numeric"}`)))

	// 解码失败的消息丢弃，快照保持上一次有效值
	assert.Equal(t, []int{5, 3}, store.Snapshot().Quantities)
}

func TestConsumer_UnknownTopicIgnored(t *testing.T) {
	consumer, store, cfg, mr := newTestConsumer(t)

	require.NoError(t, consumer.HandleMessage("shelf/unrelated/topic", []byte(`[1,2,3]`)))

	assert.Nil(t, store.Snapshot().Quantities)
	assert.False(t, mr.Exists(cfg.Telemetry.Stream.Name))
}

func TestConsumer_TrackingKeepsRawPayload(t *testing.T) {
	consumer, store, _, _ := newTestConsumer(t)

	require.NoError(t, consumer.HandleMessage("shelf/tracking/unpaid_customer", []byte(`{"customer_id":"c-9","zone":2}`)))

	assert.JSONEq(t, `{"customer_id":"c-9","zone":2}`, string(store.Snapshot().Tracking))
}
