package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// apiKeyEnv maps provider names to the plain environment variables that carry
// their API keys. They take precedence over the config file.
var apiKeyEnv = map[string]string{
	ProviderVisualCrossing: "VISUAL_CROSSING_API_KEY",
	ProviderWeatherAPI:     "WEATHERAPI_API_KEY",
}

// Load builds the configuration from defaults, an optional YAML file and
// WDP_-prefixed environment variables. A .env file in the working directory
// is loaded first when present.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := NewDefaultConfig()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("WDP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	SetDefaultsFromStructRecursive(reflect.ValueOf(cfg), "", v)

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	mergeServiceDefaults(cfg.Weather.Services, NewDefaultConfig().Weather.Services)
	applyAPIKeyEnv(cfg)

	return cfg, nil
}

// mergeServiceDefaults fills in what a config file leaves out of a known
// service. Viper treats the services map as a single value, so a file entry
// replaces the default entry wholesale. Params set in the file win; keys are
// compared case-insensitively since viper lower-cases them.
func mergeServiceDefaults(services, defaults map[string]WeatherServiceConfig) {
	for name, svc := range services {
		def, ok := defaults[name]
		if !ok {
			def, ok = defaults[svc.Type]
		}
		if !ok {
			continue
		}

		if svc.Type == "" {
			svc.Type = def.Type
		}
		if svc.BaseURL == "" {
			svc.BaseURL = def.BaseURL
		}
		if svc.Params == nil {
			svc.Params = make(map[string]string, len(def.Params))
		}
		for key, value := range def.Params {
			if !hasParam(svc.Params, key) {
				svc.Params[key] = value
			}
		}
		services[name] = svc
	}
}

func hasParam(params map[string]string, key string) bool {
	for k := range params {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

func applyAPIKeyEnv(cfg *Config) {
	for name, env := range apiKeyEnv {
		key := os.Getenv(env)
		if key == "" {
			continue
		}
		svc, ok := cfg.Weather.Services[name]
		if !ok {
			continue
		}
		svc.APIKey = key
		cfg.Weather.Services[name] = svc
	}
}

func SetDefaultsFromStructRecursive(v reflect.Value, prefix string, viper *viper.Viper) {
	// Handle pointer to struct
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		// Skip unexported fields
		if !fieldValue.CanInterface() {
			continue
		}

		key := field.Tag.Get("mapstructure")
		if key == "" {
			key = strings.ToLower(field.Name)
		}

		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if fieldValue.Kind() == reflect.Struct {
			SetDefaultsFromStructRecursive(fieldValue, fullKey, viper)
		} else {
			viper.SetDefault(fullKey, fieldValue.Interface())
		}
	}
}
