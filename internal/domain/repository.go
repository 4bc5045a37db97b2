package domain

import (
	"context"
	"time"
)

// RecordedReading is a reading kept in the reading log, tagged with its device.
type RecordedReading struct {
	ID        int64
	MachineID string
	SensorReading
}

// ReadingRepository defines operations for storing/retrieving recorded readings
// This is a PORT - adapters (SQLite, Memory) will implement it
type ReadingRepository interface {
	// SaveReading persists a reading and assigns its ID
	SaveReading(ctx context.Context, reading *RecordedReading) error

	// GetReading retrieves a specific reading by ID
	GetReading(ctx context.Context, id int64) (*RecordedReading, error)

	// GetReadingsInRange retrieves a device's readings within the time range,
	// oldest first. Uses a half-open interval: inclusive start, exclusive end [start, end).
	GetReadingsInRange(ctx context.Context, machineID string, start, end time.Time) ([]*RecordedReading, error)

	// GetLatestReading retrieves the device's most recent reading
	GetLatestReading(ctx context.Context, machineID string) (*RecordedReading, error)

	// DeleteOldReadings removes readings older than specified duration
	DeleteOldReadings(ctx context.Context, olderThan time.Duration) error
}

// ReadingStats summarises the numeric values of a series of readings.
type ReadingStats struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// CalculateStats computes statistics over the readings whose value is numeric.
func CalculateStats(readings []*RecordedReading) ReadingStats {
	var stats ReadingStats
	var sum float64

	for _, r := range readings {
		v, ok := r.Value.Float()
		if !ok {
			continue
		}
		if stats.Count == 0 || v < stats.Min {
			stats.Min = v
		}
		if stats.Count == 0 || v > stats.Max {
			stats.Max = v
		}
		sum += v
		stats.Count++
	}

	if stats.Count > 0 {
		stats.Average = sum / float64(stats.Count)
	}
	return stats
}
