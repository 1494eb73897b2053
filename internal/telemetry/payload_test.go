package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============ ParsePayload ============

func TestParsePayload_StrictJSON(t *testing.T) {
	p := ParsePayload([]byte(`{"id":"env-1","humidity":45.2}`))
	assert.Equal(t, PayloadObject, p.Kind)
	assert.Equal(t, "env-1", p.Object["id"])

	p = ParsePayload([]byte(`[1,2,3]`))
	assert.Equal(t, PayloadArray, p.Kind)
	assert.Len(t, p.Array, 3)
}

func TestParsePayload_PythonStyle(t *testing.T) {
	// 生产端偶发 Python repr 风格负载
	p := ParsePayload([]byte(`{'id': 'env-1', 'humidity': None, 'temperature': 21.5}`))
	require.Equal(t, PayloadObject, p.Kind)
	assert.Equal(t, "env-1", p.Object["id"])
	assert.Nil(t, p.Object["humidity"])
	assert.Equal(t, 21.5, p.Object["temperature"])
}

func TestParsePayload_RawFallback(t *testing.T) {
	p := ParsePayload([]byte(`not json at all {`))
	assert.Equal(t, PayloadRaw, p.Kind)
	assert.Equal(t, "not json at all {", p.Raw)
}

func TestParsePayload_ScalarIsRaw(t *testing.T) {
	p := ParsePayload([]byte(`42`))
	assert.Equal(t, PayloadRaw, p.Kind)
	assert.Equal(t, "42", p.Raw)
}

// ============ DecodeQuantities ============

func TestDecodeQuantities_BareArray(t *testing.T) {
	quantities, ok := DecodeQuantities(ParsePayload([]byte(`[5, 3, 0, 200, 255]`)))
	require.True(t, ok)
	assert.Equal(t, []int{5, 3, 0, 200, 255}, quantities)
}

func TestDecodeQuantities_FieldPriority(t *testing.T) {
	// values 优先于 quantity
	quantities, ok := DecodeQuantities(ParsePayload([]byte(`{"values":[1,2],"quantity":[9,9]}`)))
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, quantities)

	quantities, ok = DecodeQuantities(ParsePayload([]byte(`{"quantity":[4,5,6]}`)))
	require.True(t, ok)
	assert.Equal(t, []int{4, 5, 6}, quantities)

	quantities, ok = DecodeQuantities(ParsePayload([]byte(`{"quantities":[7]}`)))
	require.True(t, ok)
	assert.Equal(t, []int{7}, quantities)

	quantities, ok = DecodeQuantities(ParsePayload([]byte(`{"quantity_list":[8,9]}`)))
	require.True(t, ok)
	assert.Equal(t, []int{8, 9}, quantities)
}

func TestDecodeQuantities_NumericObjectValues(t *testing.T) {
	// 无已知字段时收集数值字段，按键名排序保证稳定
	quantities, ok := DecodeQuantities(ParsePayload([]byte(`{"cell_1":5,"cell_2":3,"cell_3":0,"note":"x"}`)))
	require.True(t, ok)
	assert.Equal(t, []int{5, 3, 0}, quantities)
}

func TestDecodeQuantities_DelimitedString(t *testing.T) {
	quantities, ok := DecodeQuantities(ParsePayload([]byte(`1, 2;3 4`)))
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3, 4}, quantities)
}

func TestDecodeQuantities_NonNumericElementsBecomeZero(t *testing.T) {
	quantities, ok := DecodeQuantities(ParsePayload([]byte(`[5, "x", 3]`)))
	require.True(t, ok)
	assert.Equal(t, []int{5, 0, 3}, quantities)
}

func TestDecodeQuantities_Undecodable(t *testing.T) {
	_, ok := DecodeQuantities(ParsePayload([]byte(`{"note":"no numbers here"}`)))
	assert.False(t, ok)

	_, ok = DecodeQuantities(ParsePayload([]byte(`garbage without digits`)))
	assert.False(t, ok)
}

// ============ DecodeSensor ============

func TestDecodeSensor(t *testing.T) {
	reading, ok := DecodeSensor(ParsePayload([]byte(`{"id":"env-1","humidity":45.2,"temperature":21.5,"light":300,"pressure":1013.2}`)))
	require.True(t, ok)
	assert.Equal(t, "env-1", reading.ID)
	require.NotNil(t, reading.Humidity)
	assert.Equal(t, 45.2, *reading.Humidity)
	require.NotNil(t, reading.Light)
	assert.Equal(t, 300.0, *reading.Light)
}

func TestDecodeSensor_MissingFieldsStayNil(t *testing.T) {
	reading, ok := DecodeSensor(ParsePayload([]byte(`{"id":"env-1","humidity":40}`)))
	require.True(t, ok)
	assert.Nil(t, reading.Temperature)
	assert.Nil(t, reading.Light)
	assert.Nil(t, reading.Pressure)
}

func TestDecodeSensor_NonObjectRejected(t *testing.T) {
	_, ok := DecodeSensor(ParsePayload([]byte(`[1,2,3]`)))
	assert.False(t, ok)

	_, ok = DecodeSensor(ParsePayload([]byte(`plain text`)))
	assert.False(t, ok)
}

// ============ EncodeRaw ============

func TestEncodeRaw(t *testing.T) {
	raw := EncodeRaw(ParsePayload([]byte(`{"customer_id":"c-1","zone":2}`)))
	assert.JSONEq(t, `{"customer_id":"c-1","zone":2}`, string(raw))

	raw = EncodeRaw(ParsePayload([]byte(`tilt detected`)))
	assert.Equal(t, `"tilt detected"`, string(raw))
}
