package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds application configuration
type Config struct {
	GRPCPort string
	HTTPPort string

	LogLevel  string // zerolog level name
	LogFormat string // "console" | "json"

	BackendType     string // "mock" | "api"
	BackendURL      string
	BackendUsername string // optional; without it the session is restored from cookies
	BackendPassword string
	UpstreamTimeout time.Duration
	BreakerFailures uint32
	BreakerOpenFor  time.Duration

	WeatherType string // "mock" | "openmeteo"
	WeatherURL  string

	RepoType string // "memory" | "sqlite"
	DBPath   string // SQLite database file path (used when RepoType=sqlite)

	PollInterval time.Duration
	Retention    time.Duration

	MQTTBroker   string // empty disables MQTT alerts
	MQTTClientID string
	MQTTUsername string
	MQTTPassword string
	MQTTTopic    string
	MQTTTLS      bool

	AllowOrigins []string

	TLSCert string // path to this service's certificate
	TLSKey  string // path to this service's private key
	TLSCA   string // path to the CA certificate
}

// loadConfig reads configuration from environment variables, after .env if present
func loadConfig() Config {
	_ = godotenv.Load()

	return Config{
		GRPCPort: getEnv("GRPC_PORT", "50051"),
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		BackendType:     getEnv("BACKEND_TYPE", "mock"),
		BackendURL:      getEnv("BACKEND_URL", "http://localhost:3000"),
		BackendUsername: os.Getenv("BACKEND_USERNAME"),
		BackendPassword: os.Getenv("BACKEND_PASSWORD"),
		UpstreamTimeout: getEnvDuration("UPSTREAM_TIMEOUT", 10*time.Second),
		BreakerFailures: uint32(getEnvInt("BREAKER_FAILURES", 5)),
		BreakerOpenFor:  getEnvDuration("BREAKER_OPEN_FOR", 30*time.Second),

		WeatherType: getEnv("WEATHER_TYPE", "mock"),
		WeatherURL:  getEnv("WEATHER_URL", "https://api.open-meteo.com"),

		RepoType: getEnv("REPO_TYPE", "memory"),
		DBPath:   getEnv("DB_PATH", "./sensorice.db"),

		PollInterval: getEnvDuration("POLL_INTERVAL", time.Minute),
		Retention:    getEnvDuration("RETENTION", 7*24*time.Hour),

		MQTTBroker:   os.Getenv("MQTT_BROKER"),
		MQTTClientID: os.Getenv("MQTT_CLIENT_ID"),
		MQTTUsername: os.Getenv("MQTT_USERNAME"),
		MQTTPassword: os.Getenv("MQTT_PASSWORD"),
		MQTTTopic:    getEnv("MQTT_TOPIC_PREFIX", "sensorice/alerts"),
		MQTTTLS:      getEnvBool("MQTT_TLS", false),

		AllowOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),

		TLSCert: os.Getenv("TLS_CERT"),
		TLSKey:  os.Getenv("TLS_KEY"),
		TLSCA:   os.Getenv("TLS_CA"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Warn().Str("key", key).Str("value", value).Msg("invalid duration, using default")
		return defaultValue
	}
	return d
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		log.Warn().Str("key", key).Str("value", value).Msg("invalid integer, using default")
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Warn().Str("key", key).Str("value", value).Msg("invalid bool, using default")
		return defaultValue
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
