package mqtt

import (
	"sync"
	"testing"
	"time"

	"smartshelf/common/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ============ 测试桩 ============

type stubToken struct{}

func (stubToken) Wait() bool                     { return true }
func (stubToken) WaitTimeout(time.Duration) bool { return true }
func (stubToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (stubToken) Error() error { return nil }

// stubBrokerClient 记录订阅调用的 mqtt.Client 桩
type stubBrokerClient struct {
	mu         sync.Mutex
	qosByTopic map[string]byte
	callbacks  map[string]mqtt.MessageHandler
}

func newStubBrokerClient() *stubBrokerClient {
	return &stubBrokerClient{
		qosByTopic: make(map[string]byte),
		callbacks:  make(map[string]mqtt.MessageHandler),
	}
}

func (s *stubBrokerClient) Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.qosByTopic[topic] = qos
	s.callbacks[topic] = callback
	return stubToken{}
}

func (s *stubBrokerClient) SubscribeMultiple(filters map[string]byte, callback mqtt.MessageHandler) mqtt.Token {
	return stubToken{}
}

func (s *stubBrokerClient) Unsubscribe(topics ...string) mqtt.Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, topic := range topics {
		delete(s.qosByTopic, topic)
		delete(s.callbacks, topic)
	}
	return stubToken{}
}

func (s *stubBrokerClient) IsConnected() bool       { return true }
func (s *stubBrokerClient) IsConnectionOpen() bool  { return true }
func (s *stubBrokerClient) Connect() mqtt.Token     { return stubToken{} }
func (s *stubBrokerClient) Disconnect(quiesce uint) {}
func (s *stubBrokerClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	return stubToken{}
}
func (s *stubBrokerClient) AddRoute(topic string, callback mqtt.MessageHandler) {}
func (s *stubBrokerClient) OptionsReader() mqtt.ClientOptionsReader {
	return mqtt.ClientOptionsReader{}
}

type stubMessage struct {
	topic   string
	payload []byte
}

func (m *stubMessage) Duplicate() bool   { return false }
func (m *stubMessage) Qos() byte         { return 1 }
func (m *stubMessage) Retained() bool    { return false }
func (m *stubMessage) Topic() string     { return m.topic }
func (m *stubMessage) MessageID() uint16 { return 1 }
func (m *stubMessage) Payload() []byte   { return m.payload }
func (m *stubMessage) Ack()              {}

func newTestClient(broker *stubBrokerClient) *Client {
	return &Client{
		client:        broker,
		config:        &config.MQTTConfig{Broker: "tcp://localhost:1883", QoS: 1},
		logger:        zap.NewNop(),
		subscriptions: make(map[string]MessageHandler),
	}
}

// ============ 重连恢复订阅 ============

func TestClient_ResubscribeAfterReconnect(t *testing.T) {
	broker := newStubBrokerClient()
	c := newTestClient(broker)

	require.NoError(t, c.Subscribe("shelf/loadcell/quantity", 1, func(topic string, payload []byte) error { return nil }))
	require.NoError(t, c.Subscribe("shelf/sensor/environment", 1, func(topic string, payload []byte) error { return nil }))

	// 重连后是一条全新连接，原有订阅全部丢失
	fresh := newStubBrokerClient()
	c.resubscribeAll(fresh)

	assert.Contains(t, fresh.qosByTopic, "shelf/loadcell/quantity")
	assert.Contains(t, fresh.qosByTopic, "shelf/sensor/environment")
	assert.Equal(t, byte(1), fresh.qosByTopic["shelf/loadcell/quantity"])
}

func TestClient_ResubscribeDeliversToHandler(t *testing.T) {
	broker := newStubBrokerClient()
	c := newTestClient(broker)

	var received []byte
	require.NoError(t, c.Subscribe("shelf/loadcell/quantity", 1, func(topic string, payload []byte) error {
		received = payload
		return nil
	}))

	fresh := newStubBrokerClient()
	c.resubscribeAll(fresh)

	// 恢复的订阅仍然路由到原处理函数
	fresh.callbacks["shelf/loadcell/quantity"](fresh, &stubMessage{
		topic:   "shelf/loadcell/quantity",
		payload: []byte("[1, 2, 3]"),
	})
	assert.Equal(t, []byte("[1, 2, 3]"), received)
}

func TestClient_UnsubscribeStopsRecovery(t *testing.T) {
	broker := newStubBrokerClient()
	c := newTestClient(broker)

	require.NoError(t, c.Subscribe("shelf/status/data", 1, func(topic string, payload []byte) error { return nil }))
	require.NoError(t, c.Unsubscribe("shelf/status/data"))

	fresh := newStubBrokerClient()
	c.resubscribeAll(fresh)

	assert.NotContains(t, fresh.qosByTopic, "shelf/status/data")
}
