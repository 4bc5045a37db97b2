package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/quentinrf/sensorice/internal/domain"
	"github.com/quentinrf/sensorice/internal/ports"
)

// Check reports whether a dependency is ready to serve.
type Check func(ctx context.Context) error

// Config of the HTTP API.
type Config struct {
	AllowOrigins []string
	Checks       map[string]Check
}

// Server is the HTTP/JSON face of the dashboard
type Server struct {
	dashboard *ports.Dashboard
	repo      domain.ReadingRepository
	hub       *Hub
	metrics   *Metrics
	checks    map[string]Check
}

// NewRouter builds the gin engine with every route registered
func NewRouter(cfg Config, dashboard *ports.Dashboard, repo domain.ReadingRepository, hub *Hub, metrics *Metrics) *gin.Engine {
	s := &Server{
		dashboard: dashboard,
		repo:      repo,
		hub:       hub,
		metrics:   metrics,
		checks:    cfg.Checks,
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     originsOrDefault(cfg.AllowOrigins),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", s.healthz)
	r.GET("/readyz", s.readyz)
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	api := r.Group("/api/v1")
	api.GET("/fields", s.listFields)
	api.GET("/fields/:id/dashboard", s.getDashboard)
	api.GET("/fields/:id/pest-risk", s.getPestRisk)
	api.GET("/fields/:id/weather", s.getWeather)
	api.GET("/devices/:machineId/history", s.getHistory)
	api.GET("/moisture/:value", s.classifyMoisture)
	if hub != nil {
		api.GET("/ws", hub.ServeWS)
	}

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		if s.metrics != nil {
			s.metrics.observeRequest(c.FullPath(), status)
		}

		evt := log.Debug()
		if status >= http.StatusInternalServerError {
			evt = log.Warn()
		}
		evt.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	}
}

// DefaultOrigin is the dashboard dev server, allowed when no origins are configured.
const DefaultOrigin = "http://localhost:5173"

func originsOrDefault(origins []string) []string {
	if len(origins) == 0 {
		return []string{DefaultOrigin}
	}
	return origins
}
