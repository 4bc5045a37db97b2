package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/quentinrf/sensorice/internal/domain"
)

// ReadingRepository implements domain.ReadingRepository with in-memory storage
// Readings are indexed per device; nothing survives a restart.
type ReadingRepository struct {
	mu       sync.RWMutex
	readings map[int64]*domain.RecordedReading
	byDevice map[string][]int64
	nextID   int64
}

// NewReadingRepository creates an empty in-memory repository
func NewReadingRepository() *ReadingRepository {
	return &ReadingRepository{
		readings: make(map[int64]*domain.RecordedReading),
		byDevice: make(map[string][]int64),
		nextID:   1,
	}
}

// SaveReading stores a reading in memory
func (r *ReadingRepository) SaveReading(ctx context.Context, reading *domain.RecordedReading) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if reading.ID == 0 {
		reading.ID = r.nextID
		r.nextID++
	}

	if _, exists := r.readings[reading.ID]; !exists {
		r.byDevice[reading.MachineID] = append(r.byDevice[reading.MachineID], reading.ID)
	}
	stored := *reading
	r.readings[reading.ID] = &stored
	return nil
}

// GetReading retrieves a reading by ID
func (r *ReadingRepository) GetReading(ctx context.Context, id int64) (*domain.RecordedReading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reading, exists := r.readings[id]
	if !exists {
		return nil, domain.ErrReadingNotFound
	}

	out := *reading
	return &out, nil
}

// GetReadingsInRange returns a device's readings within [start, end)
func (r *ReadingRepository) GetReadingsInRange(ctx context.Context, machineID string, start, end time.Time) ([]*domain.RecordedReading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []*domain.RecordedReading
	for _, id := range r.byDevice[machineID] {
		reading := r.readings[id]
		ts := reading.Timestamp
		if !ts.Before(start) && ts.Before(end) {
			out := *reading
			results = append(results, &out)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Timestamp.Before(results[j].Timestamp)
	})

	return results, nil
}

// GetLatestReading returns the device's most recent reading
func (r *ReadingRepository) GetLatestReading(ctx context.Context, machineID string) (*domain.RecordedReading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *domain.RecordedReading
	for _, id := range r.byDevice[machineID] {
		reading := r.readings[id]
		if latest == nil || reading.Timestamp.After(latest.Timestamp) {
			latest = reading
		}
	}
	if latest == nil {
		return nil, domain.ErrReadingNotFound
	}

	out := *latest
	return &out, nil
}

// DeleteOldReadings removes readings older than specified duration
func (r *ReadingRepository) DeleteOldReadings(ctx context.Context, olderThan time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)

	for machineID, ids := range r.byDevice {
		kept := ids[:0]
		for _, id := range ids {
			if r.readings[id].Timestamp.Before(cutoff) {
				delete(r.readings, id)
				continue
			}
			kept = append(kept, id)
		}
		if len(kept) == 0 {
			delete(r.byDevice, machineID)
		} else {
			r.byDevice[machineID] = kept
		}
	}

	return nil
}
