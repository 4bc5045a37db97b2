package ports

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/quentinrf/sensorice/internal/domain"
)

// Recorder polls every field periodically, logs new readings and raises
// pest alerts when a field's risk flags change.
type Recorder struct {
	dashboard *Dashboard
	repo      domain.ReadingRepository
	notifier  AlertNotifier
	interval  time.Duration
	retention time.Duration
	seen      *deduper

	mu       sync.Mutex
	lastRisk map[int64]domain.PestRisk
}

// NewRecorder creates a new background recorder
func NewRecorder(dashboard *Dashboard, repo domain.ReadingRepository, notifier AlertNotifier, interval, retention time.Duration) *Recorder {
	if notifier == nil {
		notifier = Notifiers(nil)
	}
	return &Recorder{
		dashboard: dashboard,
		repo:      repo,
		notifier:  notifier,
		interval:  interval,
		retention: retention,
		seen:      newDeduper(retention, 0),
		lastRisk:  make(map[int64]domain.PestRisk),
	}
}

// Start begins periodic polling
// This runs in a goroutine until context is cancelled
func (r *Recorder) Start(ctx context.Context) {
	log.Info().
		Dur("interval", r.interval).
		Dur("retention", r.retention).
		Msg("starting background recorder")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	cleanupTicker := time.NewTicker(24 * time.Hour)
	defer cleanupTicker.Stop()

	// Record immediately on start
	r.recordOnce(ctx)

	for {
		select {
		case <-ticker.C:
			r.recordOnce(ctx)

		case <-cleanupTicker.C:
			if err := r.repo.DeleteOldReadings(ctx, r.retention); err != nil {
				log.Error().Err(err).Msg("failed to delete old readings")
			} else {
				log.Info().Dur("retention", r.retention).Msg("deleted expired readings")
			}

		case <-ctx.Done():
			log.Info().Msg("stopping background recorder")
			return
		}
	}
}

// LastRisk returns the most recent risk evaluated for a field.
func (r *Recorder) LastRisk(fieldID int64) (domain.PestRisk, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	risk, ok := r.lastRisk[fieldID]
	return risk, ok
}

// recordOnce polls every field once
func (r *Recorder) recordOnce(ctx context.Context) {
	log.Debug().Msg("polling fields")

	fields, err := r.dashboard.Fields(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to list fields")
		return
	}

	for _, f := range fields {
		if err := r.recordField(ctx, f.ID); err != nil {
			log.Error().Err(err).Int64("field_id", f.ID).Msg("failed to record field")
		}
	}
}

func (r *Recorder) recordField(ctx context.Context, fieldID int64) error {
	snap, err := r.dashboard.Snapshot(ctx, fieldID)
	if err != nil {
		return err
	}

	saved := 0
	var saveErr error
	for _, dev := range snap.Devices {
		for _, reading := range dev.LatestReadings {
			key := fmt.Sprintf("%s|%s|%d", dev.MachineID, reading.Type, reading.Timestamp.UnixNano())
			if !r.seen.firstSeen(key) {
				continue
			}
			rec := &domain.RecordedReading{MachineID: dev.MachineID, SensorReading: reading}
			if err := r.repo.SaveReading(ctx, rec); err != nil {
				// retried on the next poll
				r.seen.forget(key)
				if saveErr == nil {
					saveErr = fmt.Errorf("save reading of %s: %w", dev.MachineID, err)
				}
				continue
			}
			saved++
		}
	}

	r.mu.Lock()
	prev, known := r.lastRisk[fieldID]
	r.lastRisk[fieldID] = snap.Risk
	r.mu.Unlock()

	log.Info().
		Int64("field_id", fieldID).
		Int("devices", len(snap.Devices)).
		Int("saved", saved).
		Bool("rodent", snap.Risk.Rodent).
		Bool("planthopper", snap.Risk.Planthopper).
		Msg("recorded field snapshot")

	changed := (known && prev != snap.Risk) || (!known && snap.Risk.Any())
	if !changed {
		return saveErr
	}

	alert := PestAlert{
		ID:       uuid.NewString(),
		FieldID:  fieldID,
		Risk:     snap.Risk,
		Previous: prev,
		Messages: snap.Risk.Messages(),
		At:       time.Now().UTC(),
	}
	if err := r.notifier.NotifyPestRisk(ctx, alert); err != nil {
		log.Error().Err(err).Int64("field_id", fieldID).Msg("failed to publish pest alert")
	}
	return saveErr
}
