package domain

import (
	"math"
	"testing"
)

func TestSummarizeForecast(t *testing.T) {
	f := Forecast{Hourly: []WeatherPoint{
		{TemperatureC: 24.0},
		{TemperatureC: 31.5},
		{TemperatureC: 27.0},
	}}

	got := SummarizeForecast(f)

	if math.Abs(got.AverageTempC-27.5) > 1e-9 {
		t.Errorf("expected average 27.5, got %v", got.AverageTempC)
	}
	if got.MaxTempC != 31.5 {
		t.Errorf("expected max 31.5, got %v", got.MaxTempC)
	}
	if got.MinTempC != 24.0 {
		t.Errorf("expected min 24, got %v", got.MinTempC)
	}
}

func TestSummarizeForecast_Empty(t *testing.T) {
	if got := SummarizeForecast(Forecast{}); got != (ForecastSummary{}) {
		t.Errorf("expected zero summary, got %+v", got)
	}
}

func TestDescribeWeatherCode(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{code: 0, want: "Clear sky"},
		{code: 63, want: "Rain: Moderate"},
		{code: 99, want: "Thunderstorm with heavy hail"},
		{code: 42, want: "Unknown"},
	}

	for _, tt := range tests {
		if got := DescribeWeatherCode(tt.code); got != tt.want {
			t.Errorf("DescribeWeatherCode(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestCalculateStats(t *testing.T) {
	readings := []*RecordedReading{
		{SensorReading: SensorReading{Type: SensorTemperature, Value: "20"}},
		{SensorReading: SensorReading{Type: SensorTemperature, Value: "n/a"}},
		{SensorReading: SensorReading{Type: SensorTemperature, Value: "30"}},
	}

	got := CalculateStats(readings)

	if got.Count != 2 || got.Average != 25 || got.Min != 20 || got.Max != 30 {
		t.Errorf("unexpected stats %+v", got)
	}
	if empty := CalculateStats(nil); empty != (ReadingStats{}) {
		t.Errorf("expected zero stats, got %+v", empty)
	}
}
