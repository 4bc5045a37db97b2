package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/quentinrf/sensorice/internal/domain"
)

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readyz is 200 only when every registered check passes.
func (s *Server) readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	results := make(map[string]string, len(s.checks))
	ready := true
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			ready = false
			continue
		}
		results[name] = "ok"
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"ready": ready, "checks": results})
}

func (s *Server) listFields(c *gin.Context) {
	fields, err := s.dashboard.Fields(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": fields})
}

func (s *Server) getDashboard(c *gin.Context) {
	fieldID, ok := fieldParam(c)
	if !ok {
		return
	}

	view := domain.ViewState{
		FieldID:        fieldID,
		SelectedDevice: c.Query("device"),
		Panel:          domain.ParsePanel(c.Query("panel")),
	}

	dash, err := s.dashboard.Load(c.Request.Context(), view)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dash})
}

func (s *Server) getPestRisk(c *gin.Context) {
	fieldID, ok := fieldParam(c)
	if !ok {
		return
	}

	risk, err := s.dashboard.PestRisk(c.Request.Context(), fieldID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"fieldId":     fieldID,
		"rodent":      risk.Rodent,
		"planthopper": risk.Planthopper,
		"messages":    risk.Messages(),
	}})
}

func (s *Server) getWeather(c *gin.Context) {
	fieldID, ok := fieldParam(c)
	if !ok {
		return
	}

	w, err := s.dashboard.Weather(c.Request.Context(), fieldID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": w})
}

type historyReading struct {
	ID        int64             `json:"id"`
	Type      domain.SensorType `json:"type"`
	Value     domain.Value      `json:"value"`
	Timestamp time.Time         `json:"timestamp"`
}

// getHistory serves a device's logged readings; from/to accept RFC 3339 or
// unix seconds and default to the last 24 hours.
func (s *Server) getHistory(c *gin.Context) {
	machineID := c.Param("machineId")

	end := time.Now()
	if v := c.Query("to"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' time"})
			return
		}
		end = t
	}
	start := end.Add(-24 * time.Hour)
	if v := c.Query("from"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' time"})
			return
		}
		start = t
	}
	if !start.Before(end) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be before 'to'"})
		return
	}

	readings, err := s.repo.GetReadingsInRange(c.Request.Context(), machineID, start, end)
	if err != nil {
		log.Error().Err(err).Str("machine_id", machineID).Msg("failed to get readings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get readings"})
		return
	}

	out := make([]historyReading, len(readings))
	for i, r := range readings {
		out[i] = historyReading{ID: r.ID, Type: r.Type, Value: r.Value, Timestamp: r.Timestamp}
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"machineId": machineID,
		"from":      start,
		"to":        end,
		"readings":  out,
		"stats":     domain.CalculateStats(readings),
	}})
}

func (s *Server) classifyMoisture(c *gin.Context) {
	band := domain.ClassifyMoistureText(c.Param("value"))
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"band":            band.String(),
		"advisory":        band.Advisory(),
		"needsIrrigation": band.NeedsIrrigation(),
	}})
}

// fail maps domain errors to HTTP statuses
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	var fe *domain.FetchError
	var pe *domain.ParseError
	var ae *domain.AuthError

	switch {
	case errors.Is(err, domain.ErrFieldNotFound):
		return http.StatusNotFound
	case errors.As(err, &ae):
		return http.StatusUnauthorized
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &fe):
		return http.StatusBadGateway
	case errors.As(err, &pe):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func fieldParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid field id"})
		return 0, false
	}
	return id, true
}

func parseTime(v string) (time.Time, error) {
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Unix(secs, 0), nil
	}
	return time.Parse(time.RFC3339, v)
}
