package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type providerQuery struct {
	Providers string `json:"providers" validate:"providers"`
}

type coordinateQuery struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lon float64 `json:"lon" validate:"longitude"`
}

func TestValidateProviders(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"empty", "", true},
		{"single", "open-meteo", true},
		{"list with spaces", "open-meteo, weather-api ,visual-crossing", true},
		{"blank entries", "open-meteo,,", true},
		{"unknown", "darksky", false},
		{"unknown in list", "open-meteo,darksky", false},
		{"case sensitive", "Open-Meteo", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateStruct(providerQuery{Providers: tt.input})
			if tt.valid {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Equal(t, "providers", errs[0].Field)
			assert.Equal(t, "providers", errs[0].Tag)
			assert.Contains(t, errs[0].Message, "open-meteo, visual-crossing, weather-api")
		})
	}
}

func TestValidateCoordinates(t *testing.T) {
	assert.Empty(t, ValidateStruct(coordinateQuery{Lat: 90, Lon: -180}))

	errs := ValidateStruct(coordinateQuery{Lat: 91, Lon: 181})
	require.Len(t, errs, 2)
	assert.Equal(t, "lat", errs[0].Field)
	assert.Contains(t, errs[0].Message, "latitude")
	assert.Equal(t, "lon", errs[1].Field)
	assert.Contains(t, errs[1].Message, "longitude")
}
