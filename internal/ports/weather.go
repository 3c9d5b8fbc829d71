package ports

import (
	"context"

	"github.com/krishisense/krishi-cli/internal/domain"
)

// WeatherProvider fetches current conditions for a point. Provider failures
// are non-fatal to the rest of the application.
type WeatherProvider interface {
	Current(ctx context.Context, coords domain.Coordinates) (domain.WeatherSnapshot, error)
}

// Locator resolves the farm's coordinates. An unresolvable location is
// reported as domain.ErrLocationUnavailable and degrades gracefully: weather
// fields stay empty and prediction submission remains possible.
type Locator interface {
	Locate(ctx context.Context) (domain.Coordinates, error)
}
