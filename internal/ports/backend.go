package ports

import (
	"context"
	"time"

	"github.com/quentinrf/sensorice/internal/domain"
)

// Backend is the device/sensor API the dashboard reads from
// This is a PORT - adapters (HTTP API, Mock) will implement it
type Backend interface {
	// Fields lists the paddy fields
	Fields(ctx context.Context) ([]domain.Field, error)

	// DevicesByField returns the device directory of a field
	DevicesByField(ctx context.Context, fieldID int64) ([]domain.DirectoryEntry, error)

	// NewestReadings returns the latest snapshot of one device
	NewestReadings(ctx context.Context, machineID string) (domain.Snapshot, error)
}

// WeatherProvider returns the hourly forecast for a position
type WeatherProvider interface {
	HourlyForecast(ctx context.Context, at domain.Coordinate) (domain.Forecast, error)
}

// PestAlert is emitted when a field's pest-risk flags change.
type PestAlert struct {
	ID       string          `json:"id"`
	FieldID  int64           `json:"fieldId"`
	Risk     domain.PestRisk `json:"risk"`
	Previous domain.PestRisk `json:"previous"`
	Messages []string        `json:"messages"`
	At       time.Time       `json:"at"`
}

// AlertNotifier delivers pest alerts to subscribers (MQTT, websocket clients)
type AlertNotifier interface {
	NotifyPestRisk(ctx context.Context, alert PestAlert) error
}

// Observer receives timing and outcome of dashboard work, e.g. for metrics.
type Observer interface {
	ObserveFetch(op string, elapsed time.Duration, err error)
	ObservePestRisk(fieldID int64, risk domain.PestRisk)
}

type nopObserver struct{}

func (nopObserver) ObserveFetch(string, time.Duration, error) {}
func (nopObserver) ObservePestRisk(int64, domain.PestRisk) {}
