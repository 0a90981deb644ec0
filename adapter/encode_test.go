package adapter

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeNumbers(t *testing.T, data []byte) map[string]interface{} {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var decoded map[string]interface{}
	require.NoError(t, decoder.Decode(&decoded))

	return decoded
}

func TestEncodePreservesKeysAndTypes(t *testing.T) {
	data, err := Encode(Message{
		"meeting.created.v3": "abc",
		"id":                 1000,
		"ratio":              0.25,
		"ok":                 true,
		"tags":               map[string]string{"domain": "meetings"},
		"nested":             map[string]interface{}{"list": []interface{}{1, "two", nil}},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{
		"meeting.created.v3": "abc",
		"id":                 json.Number("1000"),
		"ratio":              json.Number("0.25"),
		"ok":                 true,
		"tags":               map[string]interface{}{"domain": "meetings"},
		"nested":             map[string]interface{}{"list": []interface{}{json.Number("1"), "two", nil}},
	}, decodeNumbers(t, data))
}

func TestEncodeIntegerIsNotStringified(t *testing.T) {
	data, err := Encode(Message{"id": 1000})
	require.NoError(t, err)

	assert.Equal(t, `{"id":1000}`, string(data))
}

func TestEncodeWideIntegersAreExact(t *testing.T) {
	data, err := Encode(Message{
		"n": int64(1<<53 + 1),
		"u": uint64(math.MaxUint64),
		"m": int64(math.MinInt64),
	})
	require.NoError(t, err)

	assert.Equal(t, `{"m":-9223372036854775808,"n":9007199254740993,"u":18446744073709551615}`, string(data))
}

func TestEncodeRejectsNonFiniteNumbers(t *testing.T) {
	for description, value := range map[string]float64{
		"nan":          math.NaN(),
		"positive inf": math.Inf(1),
		"negative inf": math.Inf(-1),
	} {
		t.Run(description, func(t *testing.T) {
			data, err := Encode(Message{"x.y.v1": map[string]interface{}{"ratio": value}})

			assert.Nil(t, data)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "encode: error serializing message")
		})
	}
}

func TestEncodeEmptyMessage(t *testing.T) {
	data, err := Encode(Message{})
	require.NoError(t, err)

	assert.Equal(t, `{}`, string(data))
}
