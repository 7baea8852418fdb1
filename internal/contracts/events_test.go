package contracts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDAcceptsStringAndNumber(t *testing.T) {
	var payload struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	err := json.Unmarshal([]byte(`{"a":"7f1c","b":1,"c":null}`), &payload)
	require.NoError(t, err)
	assert.Equal(t, ID("7f1c"), payload.A)
	assert.Equal(t, ID("1"), payload.B)
	assert.Equal(t, ID(""), payload.C)
}

func TestIDRejectsObjects(t *testing.T) {
	var id ID
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &id))
}

func TestListEnvelopeMissingItems(t *testing.T) {
	var env ListEnvelope[AlertRecord]
	require.NoError(t, json.Unmarshal([]byte(`{"hours":24}`), &env))
	assert.Empty(t, env.Items)
	assert.Equal(t, 24, env.Hours)
}

func TestMalformedTimestampStillDecodes(t *testing.T) {
	var p SeriesPoint
	require.NoError(t, json.Unmarshal([]byte(`{"bucket_start":"yesterday","avg_risk_score":3}`), &p))
	assert.Equal(t, Timestamp("yesterday"), p.BucketStart)
	_, err := p.BucketStart.Time()
	assert.Error(t, err)
}

func TestAlertActionValid(t *testing.T) {
	assert.True(t, ActionAck.Valid())
	assert.True(t, ActionResolve.Valid())
	assert.False(t, AlertAction("delete").Valid())
}
