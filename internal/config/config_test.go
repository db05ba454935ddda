package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Weather.Timeout)
	assert.Contains(t, cfg.Proxy.AllowedOrigins, "http://localhost:3000")
	assert.True(t, cfg.Weather.Services[ProviderOpenMeteo].Enabled)
	assert.Equal(t, []string{ProviderOpenMeteo}, cfg.Weather.EnabledServices())
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
logging:
  level: debug
`), 0o600))

	t.Setenv("WDP_WEATHER_TIMEOUT", "4")
	t.Setenv("WEATHERAPI_API_KEY", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 4, cfg.Weather.Timeout)
	assert.Equal(t, "secret", cfg.Weather.Services[ProviderWeatherAPI].APIKey)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestGetConfigFallsBackToDefaults(t *testing.T) {
	cfg := GetConfig()
	require.NotNil(t, cfg)

	custom := NewDefaultConfig()
	custom.Server.Port = 1234
	SetConfig(custom)
	assert.Equal(t, 1234, GetConfig().Server.Port)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("WDP_WEATHER_LANGUAGE=ar\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("WDP_WEATHER_LANGUAGE") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "ar", cfg.Weather.Language)
}

func TestLoadExampleConfigKeepsServiceParams(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config.example.yaml"))
	require.NoError(t, err)

	om := cfg.Weather.Services[ProviderOpenMeteo]
	assert.True(t, om.Enabled)
	assert.Equal(t, "ecmwf_ifs,gfs_seamless,icon_seamless", om.Params["models"])
	assert.Equal(t, "auto", om.Params["timezone"])
	assert.Equal(t, "16", om.Params["forecast_days"])
	assert.Contains(t, om.Params["hourly"], "temperature_2m")
	assert.Contains(t, om.Params["daily"], "temperature_2m_max")

	wa := cfg.Weather.Services[ProviderWeatherAPI]
	assert.Equal(t, "3", wa.Params["days"])
	assert.Equal(t, "no", wa.Params["aqi"])
}

func TestLoadServiceOverridesWinOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
weather:
  services:
    open-meteo:
      enabled: true
      params:
        forecast_days: "7"
    visual-crossing:
      enabled: true
      params:
        unitGroup: us
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	om := cfg.Weather.Services[ProviderOpenMeteo]
	assert.Equal(t, "7", om.Params["forecast_days"])
	assert.Equal(t, "auto", om.Params["timezone"])
	assert.Equal(t, ProviderOpenMeteo, om.Type)
	assert.Equal(t, "https://api.open-meteo.com/v1", om.BaseURL)

	vc := cfg.Weather.Services[ProviderVisualCrossing]
	var unitGroups []string
	for key, value := range vc.Params {
		if strings.EqualFold(key, "unitGroup") {
			unitGroups = append(unitGroups, value)
		}
	}
	assert.Equal(t, []string{"us"}, unitGroups)
	assert.Equal(t, "days,hours,current", vc.Params["include"])
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent to testing.T.Chdir in Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
