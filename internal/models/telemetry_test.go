package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelemetryMessage_Reading(t *testing.T) {
	var msg TelemetryMessage
	require.NoError(t, json.Unmarshal([]byte(
		`{"data":{"temp":17.5,"count":3,"firmware":"v2.1","rain":null,"on":true,"meta":{"a":1}}}`), &msg))

	v, ok := msg.Reading("temp")
	assert.True(t, ok)
	assert.Equal(t, 17.5, v)

	v, ok = msg.Reading("count")
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)

	for _, key := range []string{"firmware", "rain", "on", "meta", "missing"} {
		_, ok := msg.Reading(key)
		assert.False(t, ok, key)
	}

	v, ok = TelemetryMessage{Data: map[string]any{"n": json.Number("2.5"), "i": 4}}.Reading("n")
	assert.True(t, ok)
	assert.Equal(t, 2.5, v)
}
