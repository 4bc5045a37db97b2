package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/quentinrf/sensorice/internal/domain"
	"github.com/quentinrf/sensorice/internal/ports"
	"github.com/quentinrf/sensorice/pkg/rpc"
)

// DashboardHandler implements the gRPC DashboardService
type DashboardHandler struct {
	rpc.UnimplementedDashboardServiceServer
	dashboard *ports.Dashboard
	repo      domain.ReadingRepository
}

// NewDashboardHandler creates a new gRPC handler
func NewDashboardHandler(dashboard *ports.Dashboard, repo domain.ReadingRepository) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		repo:      repo,
	}
}

// ListFields returns every field known to the backend
func (h *DashboardHandler) ListFields(ctx context.Context, req *rpc.ListFieldsRequest) (*rpc.ListFieldsResponse, error) {
	log.Info().Msg("ListFields called")

	fields, err := h.dashboard.Fields(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to list fields")
		return nil, toStatus(err)
	}

	out := make([]*rpc.Field, len(fields))
	for i, f := range fields {
		out[i] = convertField(f)
	}
	return &rpc.ListFieldsResponse{Fields: out}, nil
}

// GetDashboard returns the device panel of a field with classified readings
func (h *DashboardHandler) GetDashboard(ctx context.Context, req *rpc.GetDashboardRequest) (*rpc.GetDashboardResponse, error) {
	log.Info().Int64("field_id", req.FieldID).Str("device", req.SelectedDevice).Msg("GetDashboard called")

	view := domain.ViewState{
		FieldID:        req.FieldID,
		SelectedDevice: req.SelectedDevice,
		Panel:          domain.ParsePanel(req.Panel),
	}

	dash, err := h.dashboard.Load(ctx, view)
	if err != nil {
		log.Error().Err(err).Int64("field_id", req.FieldID).Msg("failed to load dashboard")
		return nil, toStatus(err)
	}

	devices := make([]*rpc.Device, len(dash.Devices))
	for i, d := range dash.Devices {
		cards := make([]*rpc.SensorCard, len(d.Cards))
		for j, c := range d.Cards {
			cards[j] = convertCard(c)
		}
		devices[i] = &rpc.Device{
			MachineID: d.MachineID,
			Name:      d.Name,
			HasData:   d.HasData,
			Cards:     cards,
		}
	}

	return &rpc.GetDashboardResponse{
		FieldID:        dash.View.FieldID,
		SelectedDevice: dash.View.SelectedDevice,
		Panel:          string(dash.View.Panel),
		Devices:        devices,
		PestRisk:       convertRisk(dash.PestRisk),
		FetchedAt:      dash.FetchedAt.Unix(),
	}, nil
}

// GetPestRisk evaluates the pest heuristic for a field
func (h *DashboardHandler) GetPestRisk(ctx context.Context, req *rpc.GetPestRiskRequest) (*rpc.GetPestRiskResponse, error) {
	log.Info().Int64("field_id", req.FieldID).Msg("GetPestRisk called")

	risk, err := h.dashboard.PestRisk(ctx, req.FieldID)
	if err != nil {
		log.Error().Err(err).Int64("field_id", req.FieldID).Msg("failed to evaluate pest risk")
		return nil, toStatus(err)
	}

	return &rpc.GetPestRiskResponse{FieldID: req.FieldID, PestRisk: convertRisk(risk)}, nil
}

// GetWeather returns the field's hourly forecast with temperature summary
func (h *DashboardHandler) GetWeather(ctx context.Context, req *rpc.GetWeatherRequest) (*rpc.GetWeatherResponse, error) {
	log.Info().Int64("field_id", req.FieldID).Msg("GetWeather called")

	w, err := h.dashboard.Weather(ctx, req.FieldID)
	if err != nil {
		log.Error().Err(err).Int64("field_id", req.FieldID).Msg("failed to get weather")
		return nil, toStatus(err)
	}

	hourly := make([]*rpc.WeatherPoint, len(w.Forecast.Hourly))
	for i, p := range w.Forecast.Hourly {
		hourly[i] = &rpc.WeatherPoint{
			Time:                     p.Time.Unix(),
			TemperatureC:             p.TemperatureC,
			PrecipitationProbability: p.PrecipitationProbability,
			WindSpeedKmh:             p.WindSpeedKmh,
			WeatherCode:              int32(p.Code),
			Description:              p.Description,
		}
	}

	cur := w.Forecast.Current
	return &rpc.GetWeatherResponse{
		FieldID:   req.FieldID,
		Latitude:  w.Forecast.Coordinate.Lat,
		Longitude: w.Forecast.Coordinate.Lng,
		Current: &rpc.WeatherPoint{
			TemperatureC: cur.TemperatureC,
			WindSpeedKmh: cur.WindSpeedKmh,
			WeatherCode:  int32(cur.Code),
			Description:  cur.Description,
		},
		Hourly:       hourly,
		AverageTempC: w.Summary.AverageTempC,
		MinTempC:     w.Summary.MinTempC,
		MaxTempC:     w.Summary.MaxTempC,
	}, nil
}

// GetHistory returns a device's logged readings within time range with statistics
func (h *DashboardHandler) GetHistory(ctx context.Context, req *rpc.GetHistoryRequest) (*rpc.GetHistoryResponse, error) {
	log.Info().
		Str("machine_id", req.MachineID).
		Int64("start", req.StartTime).
		Int64("end", req.EndTime).
		Msg("GetHistory called")

	if req.MachineID == "" {
		return nil, status.Error(codes.InvalidArgument, "machineId is required")
	}

	end := time.Now()
	if req.EndTime != 0 {
		end = time.Unix(req.EndTime, 0)
	}
	start := end.Add(-24 * time.Hour)
	if req.StartTime != 0 {
		start = time.Unix(req.StartTime, 0)
	}
	if !start.Before(end) {
		return nil, status.Error(codes.InvalidArgument, "startTime must be before endTime")
	}

	readings, err := h.repo.GetReadingsInRange(ctx, req.MachineID, start, end)
	if err != nil {
		log.Error().Err(err).Msg("failed to get readings")
		return nil, status.Error(codes.Internal, "failed to get readings")
	}

	out := make([]*rpc.Reading, len(readings))
	for i, r := range readings {
		out[i] = convertReading(r)
	}

	stats := domain.CalculateStats(readings)

	return &rpc.GetHistoryResponse{
		Readings: out,
		Count:    int32(stats.Count),
		Average:  stats.Average,
		Min:      stats.Min,
		Max:      stats.Max,
	}, nil
}

// RecordReading manually logs a reading (useful for testing)
func (h *DashboardHandler) RecordReading(ctx context.Context, req *rpc.RecordReadingRequest) (*rpc.RecordReadingResponse, error) {
	log.Info().Str("machine_id", req.MachineID).Str("type", req.Type).Msg("RecordReading called")

	if req.MachineID == "" {
		return nil, status.Error(codes.InvalidArgument, "machineId is required")
	}
	sensorType := domain.ParseSensorType(req.Type)
	if sensorType == domain.SensorUnknown {
		return nil, status.Errorf(codes.InvalidArgument, "unknown sensor type %q", req.Type)
	}

	ts := time.Now().UTC()
	if req.Timestamp != 0 {
		ts = time.Unix(req.Timestamp, 0).UTC()
	}

	reading := &domain.RecordedReading{
		MachineID: req.MachineID,
		SensorReading: domain.SensorReading{
			Type:      sensorType,
			Value:     domain.Value(req.Value),
			Timestamp: ts,
		},
	}
	if err := h.repo.SaveReading(ctx, reading); err != nil {
		log.Error().Err(err).Msg("failed to save reading")
		return nil, status.Error(codes.Internal, "failed to save reading")
	}

	return &rpc.RecordReadingResponse{Reading: convertReading(reading)}, nil
}

// ClassifyMoisture classifies a raw soil-moisture value
func (h *DashboardHandler) ClassifyMoisture(ctx context.Context, req *rpc.ClassifyMoistureRequest) (*rpc.ClassifyMoistureResponse, error) {
	band := domain.ClassifyMoistureText(req.Value)
	return &rpc.ClassifyMoistureResponse{
		Band:            band.String(),
		Advisory:        band.Advisory(),
		NeedsIrrigation: band.NeedsIrrigation(),
	}, nil
}

// toStatus maps domain errors to gRPC codes
func toStatus(err error) error {
	var fe *domain.FetchError
	var pe *domain.ParseError
	var ae *domain.AuthError

	switch {
	case errors.Is(err, domain.ErrFieldNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.As(err, &ae):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.As(err, &fe):
		return status.Error(codes.Unavailable, err.Error())
	case errors.As(err, &pe):
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

func convertField(f domain.Field) *rpc.Field {
	out := &rpc.Field{ID: f.ID, Name: f.Name, Coordinate: f.Coordinate}
	if pos, err := f.Position(); err == nil {
		out.Latitude = pos.Lat
		out.Longitude = pos.Lng
	}
	return out
}

func convertCard(c domain.CardView) *rpc.SensorCard {
	return &rpc.SensorCard{
		Type:      string(c.Type),
		Icon:      c.Icon,
		Value:     string(c.Value),
		Unit:      c.Unit,
		Display:   c.Display,
		Band:      c.Band,
		Advisory:  c.Advisory,
		Timestamp: c.Timestamp.Unix(),
	}
}

func convertRisk(r domain.PestRisk) *rpc.PestRisk {
	return &rpc.PestRisk{
		Rodent:      r.Rodent,
		Planthopper: r.Planthopper,
		Messages:    r.Messages(),
	}
}

// convertReading converts the domain model to its wire form
func convertReading(r *domain.RecordedReading) *rpc.Reading {
	return &rpc.Reading{
		ID:        r.ID,
		MachineID: r.MachineID,
		Type:      string(r.Type),
		Value:     string(r.Value),
		Timestamp: r.Timestamp.Unix(),
	}
}
