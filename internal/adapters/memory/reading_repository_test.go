package memory

import (
	"context"
	"testing"
	"time"

	"github.com/quentinrf/sensorice/internal/domain"
)

func record(machineID string, v string, ts time.Time) *domain.RecordedReading {
	return &domain.RecordedReading{
		MachineID: machineID,
		SensorReading: domain.SensorReading{
			Type:      domain.SensorTemperature,
			Value:     domain.Value(v),
			Timestamp: ts,
		},
	}
}

func TestSaveAndGetReading(t *testing.T) {
	repo := NewReadingRepository()
	ctx := context.Background()

	r := record("dev-1", "28", time.Now())
	if err := repo.SaveReading(ctx, r); err != nil {
		t.Fatalf("SaveReading failed: %v", err)
	}
	if r.ID == 0 {
		t.Fatal("expected ID to be set after save")
	}

	got, err := repo.GetReading(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetReading failed: %v", err)
	}
	if got.Value != "28" || got.MachineID != "dev-1" {
		t.Errorf("unexpected reading %+v", got)
	}

	if _, err := repo.GetReading(ctx, 999); err != domain.ErrReadingNotFound {
		t.Errorf("expected ErrReadingNotFound, got %v", err)
	}
}

func TestGetReadingsInRange_PerDeviceHalfOpen(t *testing.T) {
	repo := NewReadingRepository()
	ctx := context.Background()

	ts := time.Now().UTC().Truncate(time.Second)
	_ = repo.SaveReading(ctx, record("dev-1", "1", ts.Add(-time.Hour)))
	_ = repo.SaveReading(ctx, record("dev-1", "2", ts))
	_ = repo.SaveReading(ctx, record("dev-1", "3", ts.Add(time.Hour)))
	_ = repo.SaveReading(ctx, record("dev-2", "4", ts))

	results, err := repo.GetReadingsInRange(ctx, "dev-1", ts, ts.Add(time.Hour))
	if err != nil {
		t.Fatalf("GetReadingsInRange failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(results))
	}
	if results[0].Value != "2" {
		t.Errorf("expected value 2, got %v", results[0].Value)
	}
}

func TestGetLatestReading(t *testing.T) {
	repo := NewReadingRepository()
	ctx := context.Background()

	if _, err := repo.GetLatestReading(ctx, "dev-1"); err != domain.ErrReadingNotFound {
		t.Errorf("expected ErrReadingNotFound, got %v", err)
	}

	now := time.Now()
	_ = repo.SaveReading(ctx, record("dev-1", "old", now.Add(-time.Minute)))
	_ = repo.SaveReading(ctx, record("dev-1", "new", now))

	got, err := repo.GetLatestReading(ctx, "dev-1")
	if err != nil {
		t.Fatalf("GetLatestReading failed: %v", err)
	}
	if got.Value != "new" {
		t.Errorf("expected newest reading, got %v", got.Value)
	}
}

func TestDeleteOldReadings(t *testing.T) {
	repo := NewReadingRepository()
	ctx := context.Background()

	now := time.Now()
	old := record("dev-1", "1", now.Add(-48*time.Hour))
	recent := record("dev-1", "2", now.Add(-time.Hour))
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
