package locate

import (
	"context"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/krishisense/krishi-cli/internal/domain"
	"github.com/krishisense/krishi-cli/internal/ports"
)

// Config describes where the farm is. Explicit coordinates win; otherwise the
// configured address is geocoded. With neither, location is unavailable and
// weather pre-fill degrades gracefully.
type Config struct {
	Latitude  float64
	Longitude float64
	City      string
	State     string
	Country   string
	APIKey    string
}

func (c Config) hasCoordinates() bool {
	return c.Latitude != 0 || c.Longitude != 0
}

func (c Config) hasAddress() bool {
	return c.City != ""
}

// Locator is the CLI counterpart of the device location permission: consent
// is expressed by configuring the farm location.
type Locator struct {
	cfg Config

	mu     sync.Mutex
	cached *domain.Coordinates
}

var _ ports.Locator = (*Locator)(nil)

func NewLocator(cfg Config) *Locator {
	return &Locator{cfg: cfg}
}

func (l *Locator) Locate(ctx context.Context) (domain.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return domain.Coordinates{}, err
	}

	if l.cfg.hasCoordinates() {
		return domain.Coordinates{Latitude: l.cfg.Latitude, Longitude: l.cfg.Longitude}, nil
	}

	if !l.cfg.hasAddress() {
		return domain.Coordinates{}, domain.ErrLocationUnavailable
	}
	if l.cfg.APIKey == "" {
		return domain.Coordinates{}, fmt.Errorf("%w: geocoder api key is not configured", domain.ErrLocationUnavailable)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cached != nil {
		return *l.cached, nil
	}

	geocoder.ApiKey = l.cfg.APIKey
	location, err := geocoder.Geocoding(geocoder.Address{
		City:    l.cfg.City,
		State:   l.cfg.State,
		Country: l.cfg.Country,
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode farm address: %w", err)
	}

	coords := domain.Coordinates{Latitude: location.Latitude, Longitude: location.Longitude}
	l.cached = &coords

	return coords, nil
}
