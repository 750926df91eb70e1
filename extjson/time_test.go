package extjson

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTime_MarshalCanonical(t *testing.T) {
	ts := time.Date(2024, 6, 10, 6, 13, 20, 0, time.UTC)

	data, err := json.Marshal(NewTime(ts))
	require.NoError(t, err)
	assert.Equal(t, `{"$date":{"$numberLong":"1718000000000"}}`, string(data))
}

func TestTime_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
	}{
		{"zero time", time.Time{}},
		{"unix epoch", time.Unix(0, 0)},
		{"with nanoseconds", time.Date(2025, 3, 1, 12, 30, 45, 123456789, time.UTC)},
		{"non-UTC location", time.Date(2025, 3, 1, 12, 30, 45, 0, time.FixedZone("CET", 3600))},
		{"before epoch", time.Date(1912, 6, 23, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(NewTime(tt.in))
			require.NoError(t, err)

			var decoded Time
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, Truncate(tt.in), decoded.Std())

			again, err := json.Marshal(decoded)
			require.NoError(t, err)
			assert.Equal(t, string(data), string(again))
		})
	}
}

func TestTime_ZeroIsMinimum(t *testing.T) {
	data, err := json.Marshal(NewTime(time.Time{}))
	require.NoError(t, err)

	var decoded Time
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Std().IsZero())
}

func TestTime_UnmarshalRelaxed(t *testing.T) {
	want := time.Date(2024, 6, 10, 6, 13, 20, 500_000_000, time.UTC)

	t.Run("RFC 3339 string", func(t *testing.T) {
		var got Time
		require.NoError(t, json.Unmarshal([]byte(`{"$date":"2024-06-10T08:13:20.5+02:00"}`), &got))
		assert.True(t, want.Equal(got.Std()))
	})

	t.Run("bare milliseconds", func(t *testing.T) {
		var got Time
		require.NoError(t, json.Unmarshal([]byte(`{"$date":1718000000500}`), &got))
		assert.True(t, want.Equal(got.Std()))
	})
}

func TestTime_UnmarshalInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"plain string", `"2024-06-10T08:13:20Z"`},
		{"missing $date", `{}`},
		{"bad number long", `{"$date":{"$numberLong":"abc"}}`},
		{"bad string", `{"$date":"yesterday"}`},
		{"boolean", `{"$date":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Time
			err := json.Unmarshal([]byte(tt.data), &got)
			assert.ErrorIs(t, err, ErrInvalidDate)
		})
	}
}
