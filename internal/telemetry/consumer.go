package telemetry

import (
	"context"
	"strings"
	"time"

	"smartshelf/common/mqtt"
	"smartshelf/internal/config"
	"smartshelf/internal/models"

	"go.uber.org/zap"
)

// Consumer MQTT 遥测消费者
// 订阅固定主题集，规范化后写入快照（下游经快照订阅分发）
type Consumer struct {
	config     *config.Config
	mqttClient *mqtt.Client
	store      *Store
	logger     *zap.Logger
}

// NewConsumer 创建遥测消费者
func NewConsumer(cfg *config.Config, mqttClient *mqtt.Client, store *Store, logger *zap.Logger) *Consumer {
	return &Consumer{
		config:     cfg,
		mqttClient: mqttClient,
		store:      store,
		logger:     logger,
	}
}

// Start 启动消费者（订阅全部遥测主题）
func (c *Consumer) Start(ctx context.Context) error {
	topics := []string{
		c.config.Telemetry.Topics.Sensor,
		c.config.Telemetry.Topics.Quantity,
		c.config.Telemetry.Topics.Tracking,
		c.config.Telemetry.Topics.Status,
	}

	for _, topic := range topics {
		if err := c.mqttClient.Subscribe(topic, c.config.MQTT.QoS, c.HandleMessage); err != nil {
			return err
		}
		c.logger.Info("Subscribed to telemetry topic", zap.String("topic", topic))
	}

	return nil
}

// Stop 停止消费者
func (c *Consumer) Stop() error {
	return c.mqttClient.Unsubscribe(
		c.config.Telemetry.Topics.Sensor,
		c.config.Telemetry.Topics.Quantity,
		c.config.Telemetry.Topics.Tracking,
		c.config.Telemetry.Topics.Status,
	)
}

// HandleMessage 处理单条 MQTT 消息
// 解码失败的消息丢弃并记录，不影响已有快照
func (c *Consumer) HandleMessage(topic string, payload []byte) error {
	kind := classifyTopic(topic)
	if kind == "" {
		// 未知主题静默丢弃
		c.logger.Debug("Ignoring message from unclassified topic", zap.String("topic", topic))
		return nil
	}

	parsed := ParsePayload(payload)
	record := models.TelemetryRecord{
		Kind:       kind,
		Topic:      topic,
		ReceivedAt: time.Now().Unix(),
	}

	switch kind {
	case models.TelemetryKindSensor:
		reading, ok := DecodeSensor(parsed)
		if !ok {
			c.logger.Warn("Dropping undecodable sensor payload",
				zap.String("topic", topic),
				zap.String("payload", truncate(string(payload), 256)),
			)
			return nil
		}
		record.Sensor = reading

	case models.TelemetryKindQuantity:
		quantities, ok := DecodeQuantities(parsed)
		if !ok {
			c.logger.Warn("Dropping undecodable quantity payload",
				zap.String("topic", topic),
				zap.String("payload", truncate(string(payload), 256)),
			)
			return nil
		}
		record.Quantities = quantities

	case models.TelemetryKindTracking, models.TelemetryKindStatus:
		record.Raw = EncodeRaw(parsed)
	}

	c.store.Apply(record)
	return nil
}

// classifyTopic 按主题子串分类（与固定主题集一致的匹配顺序）
func classifyTopic(topic string) string {
	switch {
	case strings.Contains(topic, "sensor"):
		return models.TelemetryKindSensor
	case strings.Contains(topic, "loadcell"), strings.Contains(topic, "quantity"):
		return models.TelemetryKindQuantity
	case strings.Contains(topic, "tracking"):
		return models.TelemetryKindTracking
	case strings.Contains(topic, "status"):
		return models.TelemetryKindStatus
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
