package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/quentinrf/sensorice/internal/domain"
)

// DefaultBaseURL is the public Open-Meteo API.
const DefaultBaseURL = "https://api.open-meteo.com"

const (
	hourlyVariables = "temperature_2m,precipitation_probability,windspeed_10m,weathercode"
	localTimeLayout = "2006-01-02T15:04"
)

type currentWeather struct {
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"windspeed"`
	WeatherCode int     `json:"weathercode"`
	Time        string  `json:"time"`
}

type hourlySeries struct {
	Time                     []string  `json:"time"`
	Temperature2m            []float64 `json:"temperature_2m"`
	PrecipitationProbability []float64 `json:"precipitation_probability"`
	WindSpeed10m             []float64 `json:"windspeed_10m"`
	WeatherCode              []int     `json:"weathercode"`
}

type forecastResponse struct {
	Latitude         float64        `json:"latitude"`
	Longitude        float64        `json:"longitude"`
	UTCOffsetSeconds int            `json:"utc_offset_seconds"`
	Timezone         string         `json:"timezone"`
	CurrentWeather   currentWeather `json:"current_weather"`
	Hourly           hourlySeries   `json:"hourly"`
}

type errorResponse struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// Client fetches hourly forecasts from Open-Meteo.
// This implements the ports.WeatherProvider interface
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewClient creates a forecast client; an empty baseURL uses the public API.
func NewClient(baseURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "open-meteo",
			Timeout: time.Minute,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 3
			},
			IsSuccessful: func(err error) bool {
				return !domain.IsUpstreamFault(err)
			},
		}),
	}
}

// HourlyForecast returns today's hourly forecast at a position
func (c *Client) HourlyForecast(ctx context.Context, at domain.Coordinate) (domain.Forecast, error) {
	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, at)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.Forecast{}, &domain.FetchError{Op: "GET /v1/forecast", Err: domain.ErrBreakerOpen}
	}
	if err != nil {
		return domain.Forecast{}, err
	}
	return res.(domain.Forecast), nil
}

func (c *Client) fetch(ctx context.Context, at domain.Coordinate) (domain.Forecast, error) {
	const op = "GET /v1/forecast"

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(at.Lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(at.Lng, 'f', -1, 64))
	q.Set("hourly", hourlyVariables)
	q.Set("current_weather", "true")
	q.Set("timezone", "auto")
	q.Set("forecast_days", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/forecast?"+q.Encode(), nil)
	if err != nil {
		return domain.Forecast{}, &domain.FetchError{Op: op, Err: err}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Forecast{}, &domain.FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		var e errorResponse
		reason := strings.TrimSpace(string(b))
		if json.Unmarshal(b, &e) == nil && e.Reason != "" {
			reason = e.Reason
		}
		return domain.Forecast{}, &domain.FetchError{Op: op, Status: resp.StatusCode, Err: errors.New(reason)}
	}

	var out forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.Forecast{}, &domain.FetchError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode forecast: %w", err)}
	}

	forecast, err := toForecast(at, out)
	if err != nil {
		return domain.Forecast{}, &domain.FetchError{Op: op, Status: resp.StatusCode, Err: err}
	}

	log.Debug().
		Float64("lat", at.Lat).
		Float64("lng", at.Lng).
		Int("hours", len(forecast.Hourly)).
		Dur("elapsed", time.Since(start)).
		Msg("fetched forecast")

	return forecast, nil
}

// toForecast zips the hourly arrays. Times are local to the forecast
// position; the series is cut to the shortest array.
func toForecast(at domain.Coordinate, r forecastResponse) (domain.Forecast, error) {
	loc := time.FixedZone(r.Timezone, r.UTCOffsetSeconds)

	h := r.Hourly
	n := min(len(h.Time), len(h.Temperature2m), len(h.PrecipitationProbability), len(h.WindSpeed10m), len(h.WeatherCode))
	if n != len(h.Time) {
		log.Warn().Int("times", len(h.Time)).Int("usable", n).Msg("forecast arrays have different lengths")
	}

	hourly := make([]domain.WeatherPoint, 0, n)
	for i := 0; i < n; i++ {
		ts, err := time.ParseInLocation(localTimeLayout, h.Time[i], loc)
		if err != nil {
			return domain.Forecast{}, &domain.ParseError{Field: "hourly.time", Value: h.Time[i], Err: err}
		}
		hourly = append(hourly, domain.WeatherPoint{
			Time:                     ts,
			TemperatureC:             h.Temperature2m[i],
			PrecipitationProbability: h.PrecipitationProbability[i],
			WindSpeedKmh:             h.WindSpeed10m[i],
			Code:                     h.WeatherCode[i],
			Description:              domain.DescribeWeatherCode(h.WeatherCode[i]),
		})
	}

	cw := r.CurrentWeather
	return domain.Forecast{
		Coordinate: at,
		Current: domain.CurrentWeather{
			TemperatureC: cw.Temperature,
			WindSpeedKmh: cw.WindSpeed,
			Code:         cw.WeatherCode,
			Description:  domain.DescribeWeatherCode(cw.WeatherCode),
		},
		Hourly: hourly,
	}, nil
}
