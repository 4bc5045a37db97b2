package mock

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/quentinrf/sensorice/internal/domain"
)

// FakeBackend simulates the device API for development
// This implements the ports.Backend interface
type FakeBackend struct {
	mu        sync.RWMutex
	fields    []domain.Field
	devices   map[int64][]domain.DirectoryEntry
	readings  map[string][]domain.SensorReading
	failing   map[string]error
	variation float64
	calls     map[string]int
}

// NewFakeBackend creates an empty backend.
// variation: +/- range applied to numeric values on every read (0 keeps them fixed)
func NewFakeBackend(variation float64) *FakeBackend {
	return &FakeBackend{
		devices:   make(map[int64][]domain.DirectoryEntry),
		readings:  make(map[string][]domain.SensorReading),
		failing:   make(map[string]error),
		variation: variation,
		calls:     make(map[string]int),
	}
}

// NewDemoBackend returns a backend seeded with one demo field and three devices.
func NewDemoBackend(variation float64) *FakeBackend {
	b := NewFakeBackend(variation)
	b.AddField(domain.Field{ID: 1, Name: "Sawah Tangerang", Coordinate: "-6.1783,106.6319"})

	b.AddDevice(1, domain.DirectoryEntry{MachineID: "SR-001", Name: "North plot"},
		reading(domain.SensorTemperature, "28.4"),
		reading(domain.SensorHumidity, "76"),
		reading(domain.SensorSoilMoisture, "1850"),
		reading(domain.SensorLightLevel, "12000"),
	)
	b.AddDevice(1, domain.DirectoryEntry{MachineID: "SR-002", Name: "South plot"},
		reading(domain.SensorTemperature, "26.1"),
		reading(domain.SensorSoilMoisture, "2300"),
		reading(domain.SensorMotion, "0"),
		reading(domain.SensorValveStatus, "1"),
	)
	b.AddDevice(1, domain.DirectoryEntry{MachineID: "SR-003", Name: "Irrigation inlet"})
	return b
}

func reading(t domain.SensorType, v string) domain.SensorReading {
	return domain.SensorReading{Type: t, Value: domain.Value(v)}
}

// AddField registers a field
func (b *FakeBackend) AddField(f domain.Field) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fields = append(b.fields, f)
}

// AddDevice registers a device in a field with its base readings
func (b *FakeBackend) AddDevice(fieldID int64, entry domain.DirectoryEntry, readings ...domain.SensorReading) {
	b.mu.Lock()
	defer b.mu.Unlock()
	entry.FieldID = fieldID
	b.devices[fieldID] = append(b.devices[fieldID], entry)
	b.readings[entry.MachineID] = readings
}

// SetReadings replaces a device's base readings
func (b *FakeBackend) SetReadings(machineID string, readings ...domain.SensorReading) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.readings[machineID] = readings
}

// FailDevice makes NewestReadings fail for the device; nil err clears it
func (b *FakeBackend) FailDevice(machineID string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.failing, machineID)
		return
	}
	b.failing[machineID] = err
}

// Calls returns how often an operation was invoked
func (b *FakeBackend) Calls(op string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.calls[op]
}

// Fields returns the registered fields
func (b *FakeBackend) Fields(ctx context.Context) ([]domain.Field, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["fields"]++

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]domain.Field(nil), b.fields...), nil
}

// DevicesByField returns the directory of a field
func (b *FakeBackend) DevicesByField(ctx context.Context, fieldID int64) ([]domain.DirectoryEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["devices"]++

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]domain.DirectoryEntry(nil), b.devices[fieldID]...), nil
}

// NewestReadings returns simulated readings around the device's base values
// Simulates realistic variance (clouds pass, irrigation starts, etc.)
func (b *FakeBackend) NewestReadings(ctx context.Context, machineID string) (domain.Snapshot, error) {
	b.mu.Lock()
	b.calls["newest"]++
	failure := b.failing[machineID]
	base, known := b.readings[machineID]
	b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}
	if failure != nil {
		return domain.Snapshot{}, &domain.FetchError{Op: "GET /read/newest/" + machineID, Err: failure}
	}
	if !known {
		return domain.Snapshot{}, &domain.FetchError{Op: "GET /read/newest/" + machineID, Status: 404, Err: fmt.Errorf("unknown device")}
	}

	now := time.Now().UTC().Truncate(time.Second)
	out := make([]domain.SensorReading, len(base))
	for i, r := range base {
		if r.Timestamp.IsZero() {
			r.Timestamp = now
		}
		if v, ok := r.Value.Float(); ok && b.variation > 0 && r.Type != domain.SensorValveStatus && r.Type != domain.SensorMotion {
			// Random value around base ± variation
			v += (rand.Float64() - 0.5) * 2 * b.variation
			if v < 0 {
				v = 0
			}
			r.Value = domain.NumberValue(float64(int(v*10)) / 10)
		}
		out[i] = r
	}

	return domain.Snapshot{MachineID: machineID, Readings: out}, nil
}
