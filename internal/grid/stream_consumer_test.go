package grid

import (
	"context"
	"testing"

	commonredis "smartshelf/common/redis"
	"smartshelf/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStreamConsumer_AppliesQuantityRecords(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	manager, _, cfg := newTestManager(t)
	consumer := NewStreamConsumer(cfg, client, manager, zap.NewNop())
	ctx := context.Background()
	stream := cfg.Telemetry.Stream

	// 遥测服务发布的规范化记录
	record := models.TelemetryRecord{
		Kind:       models.TelemetryKindQuantity,
		Topic:      "shelf/loadcell/quantity",
		Quantities: []int{7, 1, 0},
	}
	_, err = commonredis.PublishJSONToStream(ctx, client, stream.Name, record)
	require.NoError(t, err)

	require.NoError(t, commonredis.CreateConsumerGroup(ctx, client, stream.Name, stream.ConsumerGroup))

	messages, err := commonredis.ReadFromStream(ctx, client, stream.Name, stream.ConsumerGroup, stream.Consumer, stream.BatchSize)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	consumer.handleMessage(ctx, messages[0])

	qty, err := manager.EffectiveQuantity("lc-1")
	require.NoError(t, err)
	assert.Equal(t, 7, qty)
}

func TestStreamConsumer_IgnoresNonQuantityRecords(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	manager, sender, cfg := newTestManager(t)
	consumer := NewStreamConsumer(cfg, client, manager, zap.NewNop())
	ctx := context.Background()

	consumer.handleMessage(ctx, commonredis.StreamMessage{
		ID:     "1-0",
		Values: map[string]interface{}{"data": `{"kind":"tracking","raw":{"customer_id":"c-1"}}`},
	})
	consumer.handleMessage(ctx, commonredis.StreamMessage{
		ID:     "2-0",
		Values: map[string]interface{}{"data": `not json`},
	})

	// 非数量记录与坏消息都不影响网格
	qty, err := manager.EffectiveQuantity("lc-1")
	require.NoError(t, err)
	assert.Equal(t, 5, qty)
	assert.Empty(t, sender.sent)
}
