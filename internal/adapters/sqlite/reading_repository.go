package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/quentinrf/sensorice/internal/domain"
)

// ReadingRepository implements domain.ReadingRepository with SQLite
// Timestamps are stored as unix nanoseconds so range queries compare integers.
type ReadingRepository struct {
	db *sql.DB
}

// NewReadingRepository creates a SQLite-backed repository
func NewReadingRepository(dbPath string) (*ReadingRepository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create table if not exists
	schema := `
	CREATE TABLE IF NOT EXISTS sensor_readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		machine_id TEXT NOT NULL,
		sensor_type TEXT NOT NULL,
		value TEXT NOT NULL,
		ts INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_device_ts ON sensor_readings(machine_id, ts);
	CREATE INDEX IF NOT EXISTS idx_ts ON sensor_readings(ts);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &ReadingRepository{db: db}, nil
}

// SaveReading stores a reading in SQLite
func (r *ReadingRepository) SaveReading(ctx context.Context, reading *domain.RecordedReading) error {
	query := `INSERT INTO sensor_readings (machine_id, sensor_type, value, ts) VALUES (?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		reading.MachineID, string(reading.Type), string(reading.Value), reading.Timestamp.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert reading: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert id: %w", err)
	}

	reading.ID = id
	return nil
}

// GetReading retrieves a reading by ID
func (r *ReadingRepository) GetReading(ctx context.Context, id int64) (*domain.RecordedReading, error) {
	query := `SELECT id, machine_id, sensor_type, value, ts FROM sensor_readings WHERE id = ?`

	reading, err := scanReading(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrReadingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query reading: %w", err)
	}
	return reading, nil
}

// GetReadingsInRange returns a device's readings within [start, end)
func (r *ReadingRepository) GetReadingsInRange(ctx context.Context, machineID string, start, end time.Time) ([]*domain.RecordedReading, error) {
	query := `
		SELECT id, machine_id, sensor_type, value, ts
		FROM sensor_readings
		WHERE machine_id = ? AND ts >= ? AND ts < ?
		ORDER BY ts ASC
	`

	rows, err := r.db.QueryContext(ctx, query, machineID, start.UnixNano(), end.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	var readings []*domain.RecordedReading
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate readings: %w", err)
	}

	return readings, nil
}

// GetLatestReading returns the device's most recent reading
func (r *ReadingRepository) GetLatestReading(ctx context.Context, machineID string) (*domain.RecordedReading, error) {
	query := `
		SELECT id, machine_id, sensor_type, value, ts
		FROM sensor_readings
		WHERE machine_id = ?
		ORDER BY ts DESC
		LIMIT 1
	`

	reading, err := scanReading(r.db.QueryRowContext(ctx, query, machineID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrReadingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest reading: %w", err)
	}
	return reading, nil
}

// DeleteOldReadings removes readings older than specified duration
func (r *ReadingRepository) DeleteOldReadings(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	query := `DELETE FROM sensor_readings WHERE ts < ?`

	if _, err := r.db.ExecContext(ctx, query, cutoff.UnixNano()); err != nil {
		return fmt.Errorf("failed to delete old readings: %w", err)
	}

	return nil
}

// Ping checks the database is reachable
func (r *ReadingRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection
func (r *ReadingRepository) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReading(s scanner) (*domain.RecordedReading, error) {
	var (
		reading    domain.RecordedReading
		sensorType string
		value      string
		ts         int64
	)

	if err := s.Scan(&reading.ID, &reading.MachineID, &sensorType, &value, &ts); err != nil {
		return nil, err
	}

	reading.Type = domain.ParseSensorType(sensorType)
	reading.Value = domain.Value(value)
	reading.Timestamp = time.Unix(0, ts).UTC()
	return &reading, nil
}
