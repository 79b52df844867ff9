package fanout

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMillisTime(t *testing.T) {
	t.Run("truncates below milliseconds", func(t *testing.T) {
		tests := map[string]int64{
			"1545084650.987":  1545084650987,
			"1545084711.1668": 1545084711166,
			"1545084711":      1545084711000,
			"0.0019":          1,
		}
		for raw, want := range tests {
			var ts MillisTime
			require.NoError(t, json.Unmarshal([]byte(raw), &ts))
			assert.Equal(t, want, ts.UnixMilli(), raw)
			assert.Equal(t, time.UTC, ts.Location())
		}
	})

	t.Run("null leaves zero time", func(t *testing.T) {
		var ts MillisTime
		require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
		assert.True(t, ts.IsZero())
	})

	t.Run("rejects non-numbers", func(t *testing.T) {
		var ts MillisTime
		assert.Error(t, ts.UnmarshalJSON([]byte(`"yesterday"`)))
	})

	t.Run("encodes fractional seconds", func(t *testing.T) {
		b, err := json.Marshal(MillisTime{Time: time.UnixMilli(1545084711166)})
		require.NoError(t, err)
		assert.Equal(t, "1545084711.166", string(b))

		b, err = json.Marshal(MillisTime{})
		require.NoError(t, err)
		assert.Equal(t, "null", string(b))
	})
}

func TestPipesKinesisRecord(t *testing.T) {
	raw := `{
		"eventSource": "aws:kinesis",
		"sequenceNumber": "42",
		"partitionKey": "p",
		"data": "aGVsbG8=",
		"approximateArrivalTimestamp": 1545084711.1668
	}`

	var r PipesKinesisRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &r))

	assert.Equal(t, "aws:kinesis", r.EventSource)
	assert.Equal(t, "42", r.SequenceNumber)
	assert.Equal(t, "p", r.PartitionKey)
	assert.Equal(t, "hello", string(r.Data))
	assert.Equal(t, int64(1545084711166), r.ApproximateArrivalTimestamp.UnixMilli())
}

func TestCloudEvent(t *testing.T) {
	raw := `{
		"specversion": "1.0",
		"id": "1",
		"source": "/orders",
		"type": "order.placed",
		"time": "2024-03-01T12:00:00Z",
		"tenant": "acme",
		"retries": 3,
		"data": {"id": "1"}
	}`

	t.Run("collects extensions", func(t *testing.T) {
		var e CloudEvent
		require.NoError(t, json.Unmarshal([]byte(raw), &e))

		assert.Equal(t, "1", e.ID)
		assert.Equal(t, "/orders", e.Source)
		assert.Equal(t, "1.0", e.SpecVersion)
		assert.Equal(t, "order.placed", e.Type)
		require.NotNil(t, e.Time)
		assert.True(t, e.Time.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
		assert.JSONEq(t, `{"id": "1"}`, string(e.Data))
		assert.Len(t, e.Extensions, 2)
		assert.Equal(t, `"acme"`, string(e.Extensions["tenant"]))
		assert.Equal(t, `3`, string(e.Extensions["retries"]))
	})

	t.Run("no extensions leaves the map nil", func(t *testing.T) {
		var e CloudEvent
		require.NoError(t, json.Unmarshal([]byte(`{"specversion": "1.0", "id": "1", "type": "t"}`), &e))
		assert.Nil(t, e.Extensions)
	})

	t.Run("inlines extensions when encoding", func(t *testing.T) {
		var e CloudEvent
		require.NoError(t, json.Unmarshal([]byte(raw), &e))

		b, err := json.Marshal(e)
		require.NoError(t, err)
		assert.JSONEq(t, raw, string(b))
	})

	t.Run("decodes base64 data", func(t *testing.T) {
		var e CloudEvent
		require.NoError(t, json.Unmarshal([]byte(`{"specversion": "1.0", "id": "2", "type": "t", "data_base64": "aGVsbG8="}`), &e))
		assert.Equal(t, "hello", string(e.DataBase64))
		assert.Empty(t, e.Data)
	})
}
