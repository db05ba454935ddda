package provider

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vzahanych/weather-compare/internal/weather"
)

var amman = weather.Coordinates{Lat: 31.95, Lon: 35.93, Name: "Amman, Jordan"}

// elevenAmman is 2024-01-01 11:00 in Amman (UTC+3).
var elevenAmman = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func testOptions() Options {
	return Options{
		Timeout:             2 * time.Second,
		DefaultLocationName: "Current location",
		Now:                 func() time.Time { return elevenAmman },
	}
}
