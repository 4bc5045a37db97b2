package mock

import (
	"context"
	"math"
	"time"

	"github.com/quentinrf/sensorice/internal/domain"
)

// FakeWeather returns a synthetic tropical day: a sine curve between
// baseTemp-4 and baseTemp+4 peaking mid-afternoon.
type FakeWeather struct {
	baseTemp float64
	err      error
}

// NewFakeWeather creates a provider centred on baseTemp °C
func NewFakeWeather(baseTemp float64) *FakeWeather {
	return &FakeWeather{baseTemp: baseTemp}
}

// Fail makes every forecast fail with err
func (w *FakeWeather) Fail(err error) {
	w.err = err
}

// HourlyForecast implements ports.WeatherProvider
func (w *FakeWeather) HourlyForecast(ctx context.Context, at domain.Coordinate) (domain.Forecast, error) {
	if err := ctx.Err(); err != nil {
		return domain.Forecast{}, err
	}
	if w.err != nil {
		return domain.Forecast{}, &domain.FetchError{Op: "GET /v1/forecast", Err: w.err}
	}

	day := time.Now().UTC().Truncate(24 * time.Hour)
	hourly := make([]domain.WeatherPoint, 24)
	for h := range hourly {
		temp := w.baseTemp + 4*math.Sin(float64(h-9)*math.Pi/12)
		code := 2
		precip := 10.0
		if h >= 14 && h <= 17 {
			code, precip = 80, 60
		}
		hourly[h] = domain.WeatherPoint{
			Time:                     day.Add(time.Duration(h) * time.Hour),
			TemperatureC:             math.Round(temp*10) / 10,
			PrecipitationProbability: precip,
			WindSpeedKmh:             8,
			Code:                     code,
			Description:              domain.DescribeWeatherCode(code),
		}
	}

	return domain.Forecast{
		Coordinate: at,
		Current: domain.CurrentWeather{
			TemperatureC: w.baseTemp,
			WindSpeedKmh: 8,
			Code:         2,
			Description:  domain.DescribeWeatherCode(2),
		},
		Hourly: hourly,
	}, nil
}
