package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/quentinrf/sensorice/internal/domain"
)

func newTestRepo(t *testing.T) *ReadingRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	repo, err := NewReadingRepository(dbPath)
	if err != nil {
		t.Fatalf("failed to create SQLite repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func makeReading(machineID string, t domain.SensorType, v string, ts time.Time) *domain.RecordedReading {
	return &domain.RecordedReading{
		MachineID:     machineID,
		SensorReading: domain.SensorReading{Type: t, Value: domain.Value(v), Timestamp: ts},
	}
}

func TestSaveAndGetReading(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	ts := time.Now().UTC().Truncate(time.Millisecond)
	reading := makeReading("SR-001", domain.SensorSoilMoisture, "1850", ts)

	if err := repo.SaveReading(ctx, reading); err != nil {
		t.Fatalf("SaveReading failed: %v", err)
	}
	if reading.ID == 0 {
		t.Fatal("expected ID to be set after save")
	}

	got, err := repo.GetReading(ctx, reading.ID)
	if err != nil {
		t.Fatalf("GetReading failed: %v", err)
	}
	if got.Value != "1850" || got.Type != domain.SensorSoilMoisture || got.MachineID != "SR-001" {
		t.Errorf("unexpected reading %+v", got)
	}
	if !got.Timestamp.Equal(ts) {
		t.Errorf("timestamp %v does not round trip, got %v", ts, got.Timestamp)
	}
}

func TestGetLatestReading_Empty(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.GetLatestReading(ctx, "SR-001")
	if err != domain.ErrReadingNotFound {
		t.Errorf("expected ErrReadingNotFound, got %v", err)
	}
}

func TestGetLatestReading_PerDevice(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	_ = repo.SaveReading(ctx, makeReading("SR-001", domain.SensorHumidity, "70", now.Add(-time.Minute)))
	_ = repo.SaveReading(ctx, makeReading("SR-001", domain.SensorHumidity, "75", now))
	_ = repo.SaveReading(ctx, makeReading("SR-002", domain.SensorHumidity, "90", now.Add(time.Minute)))

	got, err := repo.GetLatestReading(ctx, "SR-001")
	if err != nil {
		t.Fatalf("GetLatestReading failed: %v", err)
	}
	if got.Value != "75" {
		t.Errorf("expected 75, got %v", got.Value)
	}
}

func TestGetReadingsInRange(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)

	_ = repo.SaveReading(ctx, makeReading("SR-001", domain.SensorTemperature, "25", now.Add(-2*time.Hour)))
	_ = repo.SaveReading(ctx, makeReading("SR-001", domain.SensorTemperature, "28", now.Add(-1*time.Hour)))
	_ = repo.SaveReading(ctx, makeReading("SR-001", domain.SensorTemperature, "31", now.Add(1*time.Hour)))
	_ = repo.SaveReading(ctx, makeReading("SR-002", domain.SensorTemperature, "29", now.Add(-1*time.Hour)))

	// Range: [now-90m, now): only the within reading of SR-001 should appear
	results, err := repo.GetReadingsInRange(ctx, "SR-001", now.Add(-90*time.Minute), now)
	if err != nil {
		t.Fatalf("GetReadingsInRange failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(results))
	}
	if results[0].Value != "28" {
		t.Errorf("expected 28, got %v", results[0].Value)
	}
}

func TestGetReadingsInRange_InclusiveStartExclusiveEnd(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	ts := time.Now().UTC().Truncate(time.Second)
	_ = repo.SaveReading(ctx, makeReading("SR-001", domain.SensorMotion, "1", ts))

	results, err := repo.GetReadingsInRange(ctx, "SR-001", ts, ts.Add(time.Second))
	if err != nil {
		t.Fatalf("GetReadingsInRange failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result (inclusive start), got %d", len(results))
	}

	results, err = repo.GetReadingsInRange(ctx, "SR-001", ts.Add(-time.Second), ts)
	if err != nil {
		t.Fatalf("GetReadingsInRange failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected 0 results (exclusive end), got %d", len(results))
	}
}

func TestDeleteOldReadings(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	old := makeReading("SR-001", domain.SensorTemperature, "25", now.Add(-48*time.Hour))
	recent := makeReading("SR-001", domain.SensorTemperature, "26", now.Add(-1*time.Hour))
	_ = repo.SaveReading(ctx, old)
	_ = repo.SaveReading(ctx, recent)

	if err := repo.DeleteOldReadings(ctx, 24*time.Hour); err != nil {
		t.Fatalf("DeleteOldReadings failed: %v", err)
	}

	if _, err := repo.GetReading(ctx, old.ID); err != domain.ErrReadingNotFound {
		t.Errorf("expected old reading to be deleted, got err: %v", err)
	}
	if _, err := repo.GetReading(ctx, recent.ID); err != nil {
		t.Errorf("expected recent reading to remain, got err: %v", err)
	}
}
