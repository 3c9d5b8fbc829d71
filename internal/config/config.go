package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".krishi"
	envPrefix  = "KRISHI"

	defaultAPIURL = "http://localhost:5000"
)

// Config is everything the CLI needs to reach its collaborators: the
// crop-recommendation backend, the weather provider, and the geocoder.
type Config struct {
	APIURL string

	WeatherAPIKey  string
	WeatherBaseURL string

	GeocoderAPIKey string
	FarmLatitude   float64
	FarmLongitude  float64
	FarmCity       string
	FarmState      string
	FarmCountry    string

	Debug bool
}

// Load reads ~/.krishi/config.toml with KRISHI_* environment overrides. A
// missing config file is fine; every value has a default or can come from the
// environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env file: %w", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(filepath.Join(homeDir, configDir))

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api.url", defaultAPIURL)
	v.SetDefault("weather.url", "")
	v.SetDefault("debug", false)

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		APIURL:         v.GetString("api.url"),
		WeatherAPIKey:  v.GetString("weather.api_key"),
		WeatherBaseURL: v.GetString("weather.url"),
		GeocoderAPIKey: v.GetString("geocoder.api_key"),
		FarmLatitude:   v.GetFloat64("farm.latitude"),
		FarmLongitude:  v.GetFloat64("farm.longitude"),
		FarmCity:       v.GetString("farm.city"),
		FarmState:      v.GetString("farm.state"),
		FarmCountry:    v.GetString("farm.country"),
		Debug:          v.GetBool("debug"),
	}

	if strings.TrimSpace(cfg.APIURL) == "" {
		return nil, errors.New("api url is empty")
	}

	return cfg, nil
}
