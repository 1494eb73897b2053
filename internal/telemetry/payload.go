package telemetry

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"smartshelf/internal/models"
)

// PayloadKind 负载解析结果类别
type PayloadKind int

const (
	PayloadObject PayloadKind = iota // JSON 对象
	PayloadArray                     // JSON 数组
	PayloadRaw                       // 无法解析，保留原始字符串
)

// Payload 宽容解析后的负载（标签联合）
type Payload struct {
	Kind   PayloadKind
	Object map[string]interface{}
	Array  []interface{}
	Raw    string
}

// Python 风格 None 字面量
var pythonNone = regexp.MustCompile(`\bNone\b`)

// ParsePayload 宽容解析负载
// 优先严格 JSON；失败后尝试 Python repr 风格（单引号键、None）；
// 仍失败则按原始字符串保留
func ParsePayload(data []byte) Payload {
	raw := string(data)

	var v interface{}
	if err := json.Unmarshal(data, &v); err == nil {
		return classifyValue(v, raw)
	}

	normalized := pythonNone.ReplaceAllString(raw, "null")
	normalized = strings.ReplaceAll(normalized, "'", `"`)
	if err := json.Unmarshal([]byte(normalized), &v); err == nil {
		return classifyValue(v, raw)
	}

	return Payload{Kind: PayloadRaw, Raw: raw}
}

func classifyValue(v interface{}, raw string) Payload {
	switch val := v.(type) {
	case map[string]interface{}:
		return Payload{Kind: PayloadObject, Object: val, Raw: raw}
	case []interface{}:
		return Payload{Kind: PayloadArray, Array: val, Raw: raw}
	case string:
		return Payload{Kind: PayloadRaw, Raw: val}
	default:
		// 标量（数字/布尔/null）按原始字符串处理
		return Payload{Kind: PayloadRaw, Raw: raw}
	}
}

// 数量向量的备选字段名（按优先级）
var quantityFields = []string{"values", "quantity", "quantities", "quantity_list"}

var quantitySeparators = regexp.MustCompile(`[\s,;]+`)

// DecodeQuantities 解码数量向量
// 依次尝试：裸数组 → values/quantity/quantities/quantity_list 字段 →
// 对象中的数值字段（按键名排序）→ 分隔符分隔的字符串
func DecodeQuantities(p Payload) ([]int, bool) {
	switch p.Kind {
	case PayloadArray:
		return numbersFromSlice(p.Array), true

	case PayloadObject:
		for _, field := range quantityFields {
			if v, ok := p.Object[field]; ok {
				if arr, ok := v.([]interface{}); ok {
					return numbersFromSlice(arr), true
				}
			}
		}
		// 兜底：收集对象里的数值字段（Go map 无序，按键名排序保证稳定）
		keys := make([]string, 0, len(p.Object))
		for k, v := range p.Object {
			if _, ok := toNumber(v); ok {
				keys = append(keys, k)
			}
		}
		if len(keys) == 0 {
			return nil, false
		}
		sort.Strings(keys)
		out := make([]int, 0, len(keys))
		for _, k := range keys {
			n, _ := toNumber(p.Object[k])
			out = append(out, int(n))
		}
		return out, true

	case PayloadRaw:
		parts := quantitySeparators.Split(strings.TrimSpace(p.Raw), -1)
		out := make([]int, 0, len(parts))
		for _, part := range parts {
			if part == "" {
				continue
			}
			var n float64
			if err := json.Unmarshal([]byte(part), &n); err != nil {
				continue
			}
			out = append(out, int(n))
		}
		if len(out) == 0 {
			return nil, false
		}
		return out, true
	}

	return nil, false
}

// DecodeSensor 解码环境传感器读数（仅接受对象负载）
func DecodeSensor(p Payload) (*models.SensorReading, bool) {
	if p.Kind != PayloadObject {
		return nil, false
	}

	reading := &models.SensorReading{}
	for _, key := range []string{"id", "ID", "Id"} {
		if v, ok := p.Object[key].(string); ok && v != "" {
			reading.ID = v
			break
		}
	}
	reading.Humidity = numberField(p.Object, "humidity")
	reading.Temperature = numberField(p.Object, "temperature")
	reading.Light = numberField(p.Object, "light")
	reading.Pressure = numberField(p.Object, "pressure")

	return reading, true
}

// EncodeRaw 将负载还原为 JSON（tracking/status 按原样保留）
func EncodeRaw(p Payload) json.RawMessage {
	switch p.Kind {
	case PayloadObject:
		if b, err := json.Marshal(p.Object); err == nil {
			return b
		}
	case PayloadArray:
		if b, err := json.Marshal(p.Array); err == nil {
			return b
		}
	}
	b, _ := json.Marshal(p.Raw)
	return b
}

func numbersFromSlice(arr []interface{}) []int {
	out := make([]int, len(arr))
	for i, v := range arr {
		// 非数值元素按 0 处理
		if n, ok := toNumber(v); ok {
			out[i] = int(n)
		}
	}
	return out
}

func numberField(obj map[string]interface{}, key string) *float64 {
	if v, ok := obj[key]; ok {
		if n, ok := toNumber(v); ok {
			return &n
		}
	}
	return nil
}

func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
