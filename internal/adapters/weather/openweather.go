package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/krishisense/krishi-cli/internal/domain"
	"github.com/krishisense/krishi-cli/internal/ports"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// OpenWeatherProvider fetches current conditions by coordinates from
// OpenWeatherMap and normalizes them into a WeatherSnapshot.
type OpenWeatherProvider struct {
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

var _ ports.WeatherProvider = (*OpenWeatherProvider)(nil)

func NewOpenWeatherProvider(client *http.Client, apiKey, baseURL string) *OpenWeatherProvider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &OpenWeatherProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      2,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
}

func (p *OpenWeatherProvider) Current(ctx context.Context, coords domain.Coordinates) (domain.WeatherSnapshot, error) {
	if p.apiKey == "" {
		return domain.WeatherSnapshot{}, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		values.Set("lat", fmt.Sprintf("%f", coords.Latitude))
		values.Set("lon", fmt.Sprintf("%f", coords.Longitude))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return domain.WeatherSnapshot{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Name string `json:"name"`
		Sys  struct {
			Country string `json:"country"`
		} `json:"sys"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Rain struct {
			OneH   float64 `json:"1h"`
			ThreeH float64 `json:"3h"`
		} `json:"rain"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("decode weather payload: %w", err)
	}

	// Rainfall defaults to 0 when the provider omits it; the 3h bucket is the
	// fallback when there is no 1h reading.
	rainfall := payload.Rain.OneH
	if rainfall == 0 {
		rainfall = payload.Rain.ThreeH
	}

	label := payload.Name
	if label != "" && payload.Sys.Country != "" {
		label = fmt.Sprintf("%s, %s", payload.Name, payload.Sys.Country)
	}

	return domain.WeatherSnapshot{
		TemperatureC:  payload.Main.Temp,
		HumidityPct:   payload.Main.Humidity,
		RainfallMM:    rainfall,
		LocationLabel: label,
	}, nil
}
