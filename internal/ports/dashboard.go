package ports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/quentinrf/sensorice/internal/domain"
)

// DefaultUpstreamTimeout bounds a dashboard load when none is configured.
const DefaultUpstreamTimeout = 10 * time.Second

// DeviceView is one device with its readings rendered as cards.
type DeviceView struct {
	MachineID string            `json:"machineId"`
	Name      string            `json:"name,omitempty"`
	HasData   bool              `json:"hasData"`
	Cards     []domain.CardView `json:"cards"`
}

// FieldDashboard is everything the panel page shows for one field.
type FieldDashboard struct {
	View         domain.ViewState `json:"view"`
	Devices      []DeviceView     `json:"devices"`
	PestRisk     domain.PestRisk  `json:"pestRisk"`
	PestMessages []string         `json:"pestMessages"`
	FetchedAt    time.Time        `json:"fetchedAt"`
}

// FieldSnapshot is the aggregated device state of a field and its pest risk.
type FieldSnapshot struct {
	FieldID int64
	Devices []domain.Device
	Risk    domain.PestRisk
}

// WeatherView is the weather panel of a field.
type WeatherView struct {
	Field    domain.Field           `json:"field"`
	Forecast domain.Forecast        `json:"forecast"`
	Summary  domain.ForecastSummary `json:"summary"`
}

// Dashboard loads field data from the backend and runs the classifiers over it.
type Dashboard struct {
	backend  Backend
	weather  WeatherProvider
	timeout  time.Duration
	observer Observer
	now      func() time.Time
}

// DashboardOption customises a Dashboard.
type DashboardOption func(*Dashboard)

// WithTimeout bounds every load; zero or negative disables the bound.
func WithTimeout(d time.Duration) DashboardOption {
	return func(db *Dashboard) { db.timeout = d }
}

// WithObserver reports fetch timings and risk evaluations.
func WithObserver(o Observer) DashboardOption {
	return func(db *Dashboard) {
		if o != nil {
			db.observer = o
		}
	}
}

// NewDashboard creates the dashboard use case
func NewDashboard(backend Backend, weather WeatherProvider, opts ...DashboardOption) *Dashboard {
	d := &Dashboard{
		backend:  backend,
		weather:  weather,
		timeout:  DefaultUpstreamTimeout,
		observer: nopObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dashboard) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.timeout)
}

// Fields lists every field
func (d *Dashboard) Fields(ctx context.Context) ([]domain.Field, error) {
	ctx, cancel := d.bound(ctx)
	defer cancel()

	start := d.now()
	fields, err := d.backend.Fields(ctx)
	d.observer.ObserveFetch("fields", time.Since(start), err)
	if err != nil {
		return nil, asFetchError("list fields", err)
	}
	return fields, nil
}

// Field finds one field by id
func (d *Dashboard) Field(ctx context.Context, id int64) (domain.Field, error) {
	fields, err := d.Fields(ctx)
	if err != nil {
		return domain.Field{}, err
	}
	for _, f := range fields {
		if f.ID == id {
			return f, nil
		}
	}
	return domain.Field{}, fmt.Errorf("field %d: %w", id, domain.ErrFieldNotFound)
}

// Snapshot fetches the directory and every device's newest readings.
//
// The per-device fetches run concurrently and are joined together: if any of
// them fails the rest are cancelled and the whole snapshot fails, so callers
// never see a field with silently missing devices.
func (d *Dashboard) Snapshot(ctx context.Context, fieldID int64) (*FieldSnapshot, error) {
	ctx, cancel := d.bound(ctx)
	defer cancel()

	start := d.now()
	entries, err := d.backend.DevicesByField(ctx, fieldID)
	d.observer.ObserveFetch("devices", time.Since(start), err)
	if err != nil {
		return nil, asFetchError(fmt.Sprintf("field %d devices", fieldID), err)
	}

	// each goroutine owns its slot
	results := make([]domain.Snapshot, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	for i, entry := range entries {
		g.Go(func() error {
			start := time.Now()
			snap, err := d.backend.NewestReadings(gctx, entry.MachineID)
			d.observer.ObserveFetch("newest", time.Since(start), err)
			if err != nil {
				return fmt.Errorf("device %s: %w", entry.MachineID, err)
			}
			snap.MachineID = entry.MachineID
			results[i] = snap
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Int64("field_id", fieldID).Int("devices", len(entries)).Msg("field snapshot failed")
		return nil, asFetchError(fmt.Sprintf("field %d snapshot", fieldID), err)
	}

	latest := make(map[string]domain.Snapshot, len(results))
	for _, snap := range results {
		latest[snap.MachineID] = snap
	}

	devices := domain.Aggregate(entries, latest)
	risk := domain.InferPestRisk(domain.Snapshots(devices))
	d.observer.ObservePestRisk(fieldID, risk)

	return &FieldSnapshot{FieldID: fieldID, Devices: devices, Risk: risk}, nil
}

// Load builds the panel for the given view state
func (d *Dashboard) Load(ctx context.Context, view domain.ViewState) (*FieldDashboard, error) {
	snap, err := d.Snapshot(ctx, view.FieldID)
	if err != nil {
		return nil, err
	}

	views := make([]DeviceView, len(snap.Devices))
	for i, dev := range snap.Devices {
		cards := make([]domain.CardView, len(dev.LatestReadings))
		for j, r := range dev.LatestReadings {
			cards[j] = domain.Classify(r)
		}
		views[i] = DeviceView{
			MachineID: dev.MachineID,
			Name:      dev.Name,
			HasData:   dev.HasData(),
			Cards:     cards,
		}
	}

	return &FieldDashboard{
		View:         view.Resolve(snap.Devices),
		Devices:      views,
		PestRisk:     snap.Risk,
		PestMessages: snap.Risk.Messages(),
		FetchedAt:    d.now(),
	}, nil
}

// PestRisk evaluates the pest heuristic for a field
func (d *Dashboard) PestRisk(ctx context.Context, fieldID int64) (domain.PestRisk, error) {
	snap, err := d.Snapshot(ctx, fieldID)
	if err != nil {
		return domain.PestRisk{}, err
	}
	return snap.Risk, nil
}

// Weather returns the hourly forecast at the field's coordinate
func (d *Dashboard) Weather(ctx context.Context, fieldID int64) (*WeatherView, error) {
	if d.weather == nil {
		return nil, &domain.FetchError{Op: "weather", Err: errors.New("no weather provider configured")}
	}

	field, err := d.Field(ctx, fieldID)
	if err != nil {
		return nil, err
	}

	pos, err := field.Position()
	if err != nil {
		return nil, err
	}

	ctx, cancel := d.bound(ctx)
	defer cancel()

	start := d.now()
	forecast, err := d.weather.HourlyForecast(ctx, pos)
	d.observer.ObserveFetch("weather", time.Since(start), err)
	if err != nil {
		return nil, asFetchError("weather forecast", err)
	}

	return &WeatherView{
		Field:    field,
		Forecast: forecast,
		Summary:  domain.SummarizeForecast(forecast),
	}, nil
}

// asFetchError keeps typed upstream errors and wraps anything else
// (context deadline, cancellation) as a FetchError.
func asFetchError(op string, err error) error {
	var fe *domain.FetchError
	var ae *domain.AuthError
	var pe *domain.ParseError
	if errors.As(err, &fe) || errors.As(err, &ae) || errors.As(err, &pe) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, domain.ErrFieldNotFound) {
		return err
	}
	return &domain.FetchError{Op: op, Err: err}
}
