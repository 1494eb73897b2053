package models

import "encoding/json"

// 遥测记录类别（按主题子串分类）
const (
	TelemetryKindSensor   = "sensor"
	TelemetryKindQuantity = "quantity"
	TelemetryKindTracking = "tracking"
	TelemetryKindStatus   = "status"
)

// SensorReading 环境传感器读数
// 字段均可空（生产端负载字段不稳定）
type SensorReading struct {
	ID          string   `json:"id,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Light       *float64 `json:"light,omitempty"`
	Pressure    *float64 `json:"pressure,omitempty"`
}

// TelemetryRecord 规范化遥测记录（发布到 Redis Streams）
type TelemetryRecord struct {
	Kind       string          `json:"kind"`
	Topic      string          `json:"topic"`
	Sensor     *SensorReading  `json:"sensor,omitempty"`
	Quantities []int           `json:"quantities,omitempty"`
	Raw        json.RawMessage `json:"raw,omitempty"` // tracking/status 原始负载
	ReceivedAt int64           `json:"received_at"`   // Unix 秒
}

// ChangeRecord 批量保存后的扁平化变更记录（任务分配上下文）
type ChangeRecord struct {
	ProductID   *string `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UpdatedAt   string  `json:"updated_at"` // RFC3339
}
