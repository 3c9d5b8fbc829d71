package domain

// Coordinates is a WGS84 point for the farm location.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// WeatherSnapshot is a single point-in-time reading used to pre-fill
// weather-derived prediction inputs. Fetched at most once per session.
type WeatherSnapshot struct {
	TemperatureC  float64
	HumidityPct   float64
	RainfallMM    float64
	LocationLabel string
}
