package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestCreateConsumerGroup_StreamNotYetCreated(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	// 消费端可能先于生产端启动，stream 尚不存在时也要建组成功
	require.NoError(t, CreateConsumerGroup(ctx, client, "shelf:telemetry:stream", "smartshelf-data"))

	// 建组后正常读写
	_, err := PublishJSONToStream(ctx, client, "shelf:telemetry:stream", map[string]string{"kind": "quantity"})
	require.NoError(t, err)

	messages, err := ReadFromStream(ctx, client, "shelf:telemetry:stream", "smartshelf-data", "data-1", 10)
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}

func TestCreateConsumerGroup_Idempotent(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, CreateConsumerGroup(ctx, client, "shelf:telemetry:stream", "smartshelf-data"))
	// 组已存在（BUSYGROUP）视为成功
	require.NoError(t, CreateConsumerGroup(ctx, client, "shelf:telemetry:stream", "smartshelf-data"))
}
