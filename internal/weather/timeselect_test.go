package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var series = []string{"2024-01-01T10:00", "2024-01-01T11:00", "2024-01-01T12:00"}

func TestSelectCurrentIndex(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"between hours picks first at or after now", time.Date(2024, 1, 1, 11, 30, 0, 0, time.UTC), 2},
		{"on the hour matches bucket", time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC), 1},
		{"before series picks first", time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC), 0},
		{"after series falls back to zero", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectCurrentIndex(series, tt.now, time.UTC))
		})
	}
}

func TestSelectCurrentIndexUsesLocation(t *testing.T) {
	amman := time.FixedZone("Asia/Amman", 3*3600)
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC) // 11:00 local
	assert.Equal(t, 1, SelectCurrentIndex(series, now, amman))
}

func TestSelectCurrentIndexSkipsUnparseable(t *testing.T) {
	times := []string{"garbage", "2024-01-01T12:00"}
	now := time.Date(2024, 1, 1, 11, 15, 0, 0, time.UTC)
	assert.Equal(t, 1, SelectCurrentIndex(times, now, nil))
}

func TestSelectCurrentIndexEmpty(t *testing.T) {
	assert.Equal(t, -1, SelectCurrentIndex(nil, time.Now(), time.UTC))
}

func TestParseLocalTime(t *testing.T) {
	ts, err := ParseLocalTime("2024-01-01T10:00", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), ts)

	ts, err = ParseLocalTime("2024-01-01T10:00:30", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 30, ts.Second())

	_, err = ParseLocalTime("01/01/2024", time.UTC)
	assert.Error(t, err)
}
