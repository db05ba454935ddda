package config

import (
	"sync/atomic"
)

var configValue atomic.Value

func GetConfig() *Config {
	cfg, ok := configValue.Load().(*Config)
	if !ok {
		return NewDefaultConfig()
	}
	return cfg
}

func SetConfig(cfg *Config) {
	configValue.Store(cfg)
}

// Provider type identifiers used in WeatherConfig.Services.
const (
	ProviderOpenMeteo      = "open-meteo"
	ProviderVisualCrossing = "visual-crossing"
	ProviderWeatherAPI     = "weather-api"
)

type Config struct {
	Version     string          `mapstructure:"version"`
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Weather     WeatherConfig   `mapstructure:"weather"`
	Proxy       ProxyConfig     `mapstructure:"proxy"`
	Counter     CounterConfig   `mapstructure:"counter"`
	Probe       ProbeConfig     `mapstructure:"probe"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Host         string `mapstructure:"host"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	IdleTimeout  int    `mapstructure:"idle_timeout"`
}

type WeatherConfig struct {
	Services map[string]WeatherServiceConfig `mapstructure:"services"`
	// Timeout bounds every outbound provider request, in seconds.
	Timeout             int             `mapstructure:"timeout"`
	Language            string          `mapstructure:"language"`
	DefaultLocationName string          `mapstructure:"default_location_name"`
	Geocoding           GeocodingConfig `mapstructure:"geocoding"`
}

type WeatherServiceConfig struct {
	Type    string            `mapstructure:"type"`
	Enabled bool              `mapstructure:"enabled"`
	BaseURL string            `mapstructure:"base_url"`
	APIKey  string            `mapstructure:"api_key"`
	Params  map[string]string `mapstructure:"params"`
}

type GeocodingConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// ProxyConfig controls the key-hiding proxy endpoints.
type ProxyConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CounterConfig selects the visit counter backend. An empty DatabaseURL keeps
// the counter in memory.
type CounterConfig struct {
	DatabaseURL string `mapstructure:"database_url"`
	Name        string `mapstructure:"name"`
}

type ProbeConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Minutes int     `mapstructure:"minutes"`
	Lat     float64 `mapstructure:"lat"`
	Lon     float64 `mapstructure:"lon"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Version:     "1.0.0",
		Environment: "development",
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  60,
		},
		Weather: WeatherConfig{
			Services: map[string]WeatherServiceConfig{
				ProviderOpenMeteo: {
					Type:    ProviderOpenMeteo,
					Enabled: true,
					BaseURL: "https://api.open-meteo.com/v1",
					Params: map[string]string{
						"timezone":      "auto",
						"forecast_days": "16",
						"models":        "ecmwf_ifs,gfs_seamless,icon_seamless",
						"hourly":        "temperature_2m,relativehumidity_2m,precipitation,rain,windspeed_10m,weathercode",
						"daily":         "weathercode,temperature_2m_max,temperature_2m_min,precipitation_sum",
					},
				},
				ProviderVisualCrossing: {
					Type:    ProviderVisualCrossing,
					Enabled: false,
					BaseURL: "https://weather.visualcrossing.com/VisualCrossingWebServices/rest/services",
					APIKey:  "",
					Params: map[string]string{
						"unitGroup": "metric",
						"include":   "days,hours,current",
					},
				},
				ProviderWeatherAPI: {
					Type:    ProviderWeatherAPI,
					Enabled: false,
					BaseURL: "https://api.weatherapi.com/v1",
					APIKey:  "",
					Params: map[string]string{
						"days": "3",
						"aqi":  "no",
					},
				},
			},
			Timeout:             10,
			Language:            "en",
			DefaultLocationName: "Current location",
			Geocoding: GeocodingConfig{
				BaseURL: "https://geocoding-api.open-meteo.com/v1",
			},
		},
		Proxy: ProxyConfig{
			AllowedOrigins: []string{"https://mo-ja-sh.github.io", "http://localhost:3000"},
		},
		Counter: CounterConfig{
			Name: "site",
		},
		Probe: ProbeConfig{
			Enabled: false,
			Minutes: 15,
			Lat:     31.95,
			Lon:     35.93,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "",
		},
		Telemetry: TelemetryConfig{
			Enabled:  false,
			Endpoint: "tempo:4317",
		},
	}
}

// EnabledServices returns the names of enabled providers.
func (c WeatherConfig) EnabledServices() []string {
	names := make([]string, 0, len(c.Services))
	for name, svc := range c.Services {
		if svc.Enabled {
			names = append(names, name)
		}
	}
	return names
}
