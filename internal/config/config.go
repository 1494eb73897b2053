package config

import (
	"os"
	"strconv"

	"smartshelf/common/config"
)

// Config 智能货架服务配置
type Config struct {
	Database config.DatabaseConfig
	Redis    config.RedisConfig
	MQTT     config.MQTTConfig

	// 遥测服务配置
	Telemetry struct {
		// 订阅主题（固定主题集）
		Topics struct {
			Sensor   string // 环境传感器
			Quantity string // 载荷传感器数量向量
			Tracking string // 未支付顾客跟踪
			Status   string // 货架倾斜/晃动状态
		}

		// Redis 快照镜像键（页面重载后恢复最近一次数据）
		Cache struct {
			SensorKey   string
			QuantityKey string
			TrackingKey string
			StatusKey   string
		}

		// 规范化记录发布到 Redis Streams（数据服务消费）
		Stream struct {
			Name          string
			ConsumerGroup string
			Consumer      string
			BatchSize     int64
		}
	}

	// 货架网格配置
	Shelf struct {
		ID      string // 本实例管理的货架
		Floors  int    // 层数，默认 3
		Columns int    // 列数，默认 5

		// 哨兵数量值（硬件故障编码，可按部署配置）
		Sentinels struct {
			OverCapacity  int // 数量超出上限
			WrongProduct  int // 商品放置错误
			LoadCellFault int // 载荷传感器故障
		}
	}

	// 通知 API 配置
	Notify struct {
		BaseURL string
		Timeout int // 秒
	}

	// 批量保存配置
	Upload struct {
		Concurrency int    // 并发保存数
		HistoryKey  string // 变更历史（任务分配上下文）
		HistoryMax  int64  // 历史保留条数
	}

	HTTP struct {
		Addr string
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{}

	// 数据库（默认值 + 环境变量覆盖）
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "smartshelf")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "ws://broker.hivemq.com:8000/mqtt")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "smartshelf-telemetry")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.QoS = 1

	// 遥测主题
	cfg.Telemetry.Topics.Sensor = getEnv("TOPIC_SENSOR", "shelf/sensor/environment")
	cfg.Telemetry.Topics.Quantity = getEnv("TOPIC_QUANTITY", "shelf/loadcell/quantity")
	cfg.Telemetry.Topics.Tracking = getEnv("TOPIC_TRACKING", "shelf/tracking/unpaid_customer")
	cfg.Telemetry.Topics.Status = getEnv("TOPIC_STATUS", "shelf/status/data")

	// 快照镜像键
	cfg.Telemetry.Cache.SensorKey = getEnv("CACHE_SENSOR_KEY", "shelf:last_sensor")
	cfg.Telemetry.Cache.QuantityKey = getEnv("CACHE_QUANTITY_KEY", "shelf:realtime_quantity")
	cfg.Telemetry.Cache.TrackingKey = getEnv("CACHE_TRACKING_KEY", "shelf:last_tracking")
	cfg.Telemetry.Cache.StatusKey = getEnv("CACHE_STATUS_KEY", "shelf:last_status")

	cfg.Telemetry.Stream.Name = getEnv("TELEMETRY_STREAM", "shelf:telemetry:stream")
	cfg.Telemetry.Stream.ConsumerGroup = getEnv("TELEMETRY_STREAM_GROUP", "smartshelf-data")
	cfg.Telemetry.Stream.Consumer = getEnv("TELEMETRY_STREAM_CONSUMER", "data-1")
	cfg.Telemetry.Stream.BatchSize = 10

	// 货架网格（3层 x 5列 = 15格）
	cfg.Shelf.ID = getEnv("SHELF_ID", "shelf-1")
	cfg.Shelf.Floors = getEnvInt("SHELF_FLOORS", 3)
	cfg.Shelf.Columns = getEnvInt("SHELF_COLUMNS", 5)

	// 哨兵数量值
	cfg.Shelf.Sentinels.OverCapacity = getEnvInt("SENTINEL_OVER_CAPACITY", 200)
	cfg.Shelf.Sentinels.WrongProduct = getEnvInt("SENTINEL_WRONG_PRODUCT", 222)
	cfg.Shelf.Sentinels.LoadCellFault = getEnvInt("SENTINEL_LOADCELL_FAULT", 255)

	cfg.Notify.BaseURL = getEnv("NOTIFY_API_URL", "http://localhost:8080/api/v1")
	cfg.Notify.Timeout = getEnvInt("NOTIFY_TIMEOUT", 10)

	cfg.Upload.Concurrency = getEnvInt("UPLOAD_CONCURRENCY", 5)
	cfg.Upload.HistoryKey = getEnv("UPLOAD_HISTORY_KEY", "shelf:loadcell_history")
	cfg.Upload.HistoryMax = 100

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
