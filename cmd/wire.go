package cmd

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	backendclient "github.com/krishisense/krishi-cli/internal/adapters/backend"
	"github.com/krishisense/krishi-cli/internal/adapters/locate"
	tomlrepo "github.com/krishisense/krishi-cli/internal/adapters/repo/toml"
	chainstore "github.com/krishisense/krishi-cli/internal/adapters/secrets/chain"
	weatherclient "github.com/krishisense/krishi-cli/internal/adapters/weather"
	"github.com/krishisense/krishi-cli/internal/application"
	"github.com/krishisense/krishi-cli/internal/config"
	"github.com/krishisense/krishi-cli/internal/logging"
	"github.com/krishisense/krishi-cli/internal/ports"
)

type app struct {
	cfg     *config.Config
	manager *application.Manager
	log     *zap.Logger
	now     func() time.Time
}

func wireApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	log, err := logging.New(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	sessions, err := tomlrepo.NewSessionRepository(viper.New())
	if err != nil {
		return nil, fmt.Errorf("wire session repository: %w", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	secrets, err := chainstore.NewPassFirstWithFileFallback(filepath.Join(homeDir, ".krishi", "secrets"))
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	backend := backendclient.NewClient(cfg.APIURL, http.DefaultClient)
	weather := weatherclient.NewOpenWeatherProvider(http.DefaultClient, cfg.WeatherAPIKey, cfg.WeatherBaseURL)
	locator := locate.NewLocator(locate.Config{
		Latitude:  cfg.FarmLatitude,
		Longitude: cfg.FarmLongitude,
		City:      cfg.FarmCity,
		State:     cfg.FarmState,
		Country:   cfg.FarmCountry,
		APIKey:    cfg.GeocoderAPIKey,
	})

	manager := application.NewManager(backend, sessions, secrets, weather, locator, ports.SystemClock{}, log)

	return &app{
		cfg:     cfg,
		manager: manager,
		log:     log,
		now:     time.Now,
	}, nil
}
