package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/quentinrf/sensorice/internal/adapters/api"
	grpcAdapter "github.com/quentinrf/sensorice/internal/adapters/grpc"
	"github.com/quentinrf/sensorice/internal/adapters/httpapi"
	"github.com/quentinrf/sensorice/internal/adapters/memory"
	"github.com/quentinrf/sensorice/internal/adapters/mock"
	"github.com/quentinrf/sensorice/internal/adapters/mqtt"
	"github.com/quentinrf/sensorice/internal/adapters/openmeteo"
	"github.com/quentinrf/sensorice/internal/adapters/sqlite"
	"github.com/quentinrf/sensorice/internal/domain"
	"github.com/quentinrf/sensorice/internal/ports"
	"github.com/quentinrf/sensorice/pkg/rpc"
	"github.com/quentinrf/sensorice/pkg/tlsconfig"
)

func main() {
	// Read configuration from environment
	config := loadConfig()

	// Initialize logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if config.LogFormat != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		log.Warn().Str("level", config.LogLevel).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().Msg("starting sensorice dashboard service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checks := map[string]httpapi.Check{}

	// Initialize repository
	var repo domain.ReadingRepository
	switch config.RepoType {
	case "sqlite":
		r, err := sqlite.NewReadingRepository(config.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("db_path", config.DBPath).Msg("failed to open SQLite database")
		}
		defer r.Close()
		repo = r
		checks["repository"] = r.Ping
		log.Info().Str("db_path", config.DBPath).Msg("initialized SQLite repository")
	default:
		repo = memory.NewReadingRepository()
		log.Info().Msg("initialized in-memory repository")
	}

	// Initialize backend
	var backend ports.Backend
	switch config.BackendType {
	case "api":
		client, err := api.NewClient(api.Config{
			BaseURL:         config.BackendURL,
			Timeout:         config.UpstreamTimeout,
			BreakerFailures: config.BreakerFailures,
			BreakerOpenFor:  config.BreakerOpenFor,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create backend client")
		}
		session := api.NewSession(client)
		if err := startSession(ctx, session, config); err != nil {
			log.Warn().Err(err).Msg("backend session not established")
		}
		log.Info().Str("url", config.BackendURL).Str("session", string(session.Status())).Msg("initialized backend API client")
		checks["backend_session"] = func(context.Context) error {
			if s := session.Status(); s != api.StatusAuthenticated {
				return fmt.Errorf("session %s", s)
			}
			return nil
		}
		backend = client
	default:
		backend = mock.NewDemoBackend(2.0)
		log.Info().Msg("initialized mock backend")
	}

	// Initialize weather provider
	var weather ports.WeatherProvider
	switch config.WeatherType {
	case "openmeteo":
		weather = openmeteo.NewClient(config.WeatherURL, config.UpstreamTimeout)
		log.Info().Str("url", config.WeatherURL).Msg("initialized Open-Meteo client")
	default:
		weather = mock.NewFakeWeather(28.0)
		log.Info().Msg("initialized mock weather")
	}

	metrics := httpapi.NewMetrics()
	dashboard := ports.NewDashboard(backend, weather,
		ports.WithTimeout(config.UpstreamTimeout),
		ports.WithObserver(metrics),
	)

	// Alert fan-out: live websocket clients, plus MQTT when configured
	hub := httpapi.NewHub(metrics, config.AllowOrigins)
	notifiers := ports.Notifiers{hub}
	if config.MQTTBroker != "" {
		mqttCfg := mqtt.Config{
			Broker:      config.MQTTBroker,
			ClientID:    config.MQTTClientID,
			Username:    config.MQTTUsername,
			Password:    config.MQTTPassword,
			TopicPrefix: config.MQTTTopic,
			QoS:         1,
		}
		if config.MQTTTLS {
			tlsCfg, err := tlsconfig.LoadClientTLS(config.TLSCert, config.TLSKey, config.TLSCA)
			if err != nil {
				log.Fatal().Err(err).Msg("failed to load MQTT TLS config")
			}
			mqttCfg.TLS = tlsCfg
		}
		publisher, err := mqtt.Connect(ctx, mqttCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to MQTT broker")
		}
		defer publisher.Close()
		notifiers = append(notifiers, publisher)
		checks["mqtt"] = publisher.Ready
		log.Info().Str("broker", config.MQTTBroker).Str("topic", config.MQTTTopic).Msg("MQTT alerts enabled")
	}

	// Initialize gRPC handler
	handler := grpcAdapter.NewDashboardHandler(dashboard, repo)

	// Configure TLS if certificates are provided
	var serverOpts []grpc.ServerOption
	if config.TLSCert != "" {
		tlsCfg, err := tlsconfig.LoadServerTLS(config.TLSCert, config.TLSKey, config.TLSCA)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load TLS config")
		}
		serverOpts = append(serverOpts, grpc.Creds(credentials.NewTLS(tlsCfg)))
		log.Info().Bool("mtls", config.TLSCA != "").Msg("TLS enabled")
	} else {
		log.Warn().Msg("TLS_CERT not set, starting without TLS (dev mode only)")
	}

	// Create gRPC server
	grpcServer := grpc.NewServer(serverOpts...)
	rpc.RegisterDashboardServiceServer(grpcServer, handler)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_SERVING)

	// Enable gRPC reflection for grpcurl testing
	reflection.Register(grpcServer)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", config.GRPCPort))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to listen")
	}

	log.Info().Str("port", config.GRPCPort).Msg("gRPC server listening")

	go func() {
		if err := grpcServer.Serve(listener); err != nil {
			log.Fatal().Err(err).Msg("failed to serve gRPC")
		}
	}()

	// HTTP API
	if level > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.NewRouter(httpapi.Config{
		AllowOrigins: config.AllowOrigins,
		Checks:       checks,
	}, dashboard, repo, hub, metrics)

	httpServer := &http.Server{
		Addr:              ":" + config.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", config.HTTPPort).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to serve HTTP")
		}
	}()

	// Start background recorder
	recorder := ports.NewRecorder(dashboard, repo, notifiers, config.PollInterval, config.Retention)
	go recorder.Start(ctx)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	cancel() // Stop recorder
	healthServer.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown failed")
	}
	hub.Close()
	grpcServer.GracefulStop()

	log.Info().Msg("server stopped")
}

// startSession signs in with configured credentials, or restores the cookie session
func startSession(ctx context.Context, session *api.Session, config Config) error {
	ctx, cancel := context.WithTimeout(ctx, config.UpstreamTimeout)
	defer cancel()

	if config.BackendUsername != "" {
		return session.Login(ctx, config.BackendUsername, config.BackendPassword)
	}
	return session.Bootstrap(ctx)
}
