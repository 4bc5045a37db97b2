package ports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quentinrf/sensorice/internal/adapters/mock"
	"github.com/quentinrf/sensorice/internal/domain"
)

func sample(t domain.SensorType, v string) domain.SensorReading {
	return domain.SensorReading{Type: t, Value: domain.Value(v)}
}

func newTestBackend() *mock.FakeBackend {
	b := mock.NewFakeBackend(0) // deterministic: values never vary
	b.AddField(domain.Field{ID: 7, Name: "Test field", Coordinate: "-6.2,106.8"})
	b.AddDevice(7, domain.DirectoryEntry{MachineID: "dev-1"},
		sample(domain.SensorTemperature, "30"), sample(domain.SensorHumidity, "80"))
	b.AddDevice(7, domain.DirectoryEntry{MachineID: "dev-2"},
		sample(domain.SensorMotion, "0"))
	b.AddDevice(7, domain.DirectoryEntry{MachineID: "dev-3"},
		sample(domain.SensorSoilMoisture, "1750"))
	return b
}

func TestDashboard_Load(t *testing.T) {
	d := NewDashboard(newTestBackend(), nil)

	got, err := d.Load(context.Background(), domain.ViewState{FieldID: 7})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(got.Devices) != 3 {
		t.Fatalf("expected 3 devices, got %d", len(got.Devices))
	}
	if got.View.SelectedDevice != "dev-1" {
		t.Errorf("expected first device selected, got %q", got.View.SelectedDevice)
	}
	if got.PestRisk != (domain.PestRisk{Planthopper: true}) {
		t.Errorf("unexpected pest risk %+v", got.PestRisk)
	}
	soil := got.Devices[2].Cards[0]
	if soil.Band != "Optimal" {
		t.Errorf("expected Optimal band, got %q", soil.Band)
	}
}

func TestDashboard_FailedDeviceFailsTheJoin(t *testing.T) {
	b := newTestBackend()
	b.FailDevice("dev-2", errors.New("connection reset"))
	d := NewDashboard(b, nil)

	_, err := d.Load(context.Background(), domain.ViewState{FieldID: 7})
	if err == nil {
		t.Fatal("expected error when one device fetch fails")
	}

	var fe *domain.FetchError
	if !errors.As(err, &fe) {
		t.Errorf("expected FetchError, got %T: %v", err, err)
	}
}

func TestDashboard_EmptySnapshotKeepsDevice(t *testing.T) {
	b := newTestBackend()
	b.SetReadings("dev-2")
	d := NewDashboard(b, nil)

	got, err := d.Load(context.Background(), domain.ViewState{FieldID: 7, SelectedDevice: "dev-2"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Devices[1].HasData {
		t.Error("dev-2 should have no data")
	}
	if got.View.SelectedDevice != "dev-2" {
		t.Errorf("selection should be kept, got %q", got.View.SelectedDevice)
	}
}

type slowBackend struct {
	*mock.FakeBackend
}

func (s slowBackend) NewestReadings(ctx context.Context, machineID string) (domain.Snapshot, error) {
	select {
	case <-ctx.Done():
		return domain.Snapshot{}, ctx.Err()
	case <-time.After(5 * time.Second):
		return s.FakeBackend.NewestReadings(ctx, machineID)
	}
}

func TestDashboard_Timeout(t *testing.T) {
	d := NewDashboard(slowBackend{newTestBackend()}, nil, WithTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := d.PestRisk(context.Background(), 7)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("timeout was not applied")
	}
}

func TestDashboard_Weather(t *testing.T) {
	d := NewDashboard(newTestBackend(), mock.NewFakeWeather(28))

	got, err := d.Weather(context.Background(), 7)
	if err != nil {
		t.Fatalf("Weather failed: %v", err)
	}
	if len(got.Forecast.Hourly) != 24 {
		t.Errorf("expected 24 hourly points, got %d", len(got.Forecast.Hourly))
	}
	if got.Summary.MaxTempC < got.Summary.MinTempC {
		t.Errorf("inconsistent summary %+v", got.Summary)
	}
	if got.Forecast.Coordinate != (domain.Coordinate{Lat: -6.2, Lng: 106.8}) {
		t.Errorf("forecast requested for wrong coordinate %+v", got.Forecast.Coordinate)
	}
}

func TestDashboard_WeatherMalformedCoordinate(t *testing.T) {
	b := mock.NewFakeBackend(0)
	b.AddField(domain.Field{ID: 9, Name: "Bad", Coordinate: "somewhere"})
	d := NewDashboard(b, mock.NewFakeWeather(28))

	_, err := d.Weather(context.Background(), 9)

	var pe *domain.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("expected ParseError, got %v", err)
	}
}

func TestDashboard_FieldNotFound(t *testing.T) {
	d := NewDashboard(newTestBackend(), mock.NewFakeWeather(28))

	_, err := d.Weather(context.Background(), 404)
	if !errors.Is(err, domain.ErrFieldNotFound) {
		t.Errorf("expected ErrFieldNotFound, got %v", err)
	}
}
