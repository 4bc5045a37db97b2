package mqtt

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/quentinrf/sensorice/internal/ports"
)

// DefaultTopicPrefix is where alerts go; the field id is appended.
const DefaultTopicPrefix = "sensorice/alerts"

// Config holds MQTT publisher configuration
type Config struct {
	Broker      string // e.g. tcp://localhost:1883 or ssl://broker:8883
	ClientID    string // random when empty
	Username    string
	Password    string
	TopicPrefix string
	QoS         byte
	TLS         *tls.Config // nil for plain TCP

	MaxRetries     uint64        // connect attempts after the first
	PublishTimeout time.Duration
}

// Publisher sends pest alerts to an MQTT broker.
// This implements the ports.AlertNotifier interface
type Publisher struct {
	client  paho.Client
	prefix  string
	qos     byte
	timeout time.Duration
}

// Connect dials the broker, retrying with exponential backoff
func Connect(ctx context.Context, cfg Config) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, errors.New("mqtt broker not configured")
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "sensorice-" + uuid.NewString()[:8]
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 4
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	if cfg.TLS != nil {
		opts.SetTLSConfig(cfg.TLS)
	}
	opts.SetOnConnectHandler(func(paho.Client) {
		log.Info().Str("broker", cfg.Broker).Msg("mqtt connected")
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.Warn().Err(err).Str("broker", cfg.Broker).Msg("mqtt connection lost")
	})

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second

	var client paho.Client
	err := backoff.Retry(func() error {
		client = paho.NewClient(opts)
		token := client.Connect()
		if !token.WaitTimeout(10 * time.Second) {
			return errors.New("connect timed out")
		}
		if err := token.Error(); err != nil {
			log.Warn().Err(err).Str("broker", cfg.Broker).Msg("failed to connect to mqtt broker")
			return err
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, cfg.MaxRetries), ctx))
	if err != nil {
		return nil, fmt.Errorf("could not connect to mqtt broker %s: %w", cfg.Broker, err)
	}

	return NewPublisher(client, cfg), nil
}

// NewPublisher wraps an already connected client
func NewPublisher(client paho.Client, cfg Config) *Publisher {
	prefix := strings.TrimRight(cfg.TopicPrefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	timeout := cfg.PublishTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Publisher{client: client, prefix: prefix, qos: cfg.QoS, timeout: timeout}
}

// Topic returns the alert topic of a field
func (p *Publisher) Topic(fieldID int64) string {
	return p.prefix + "/" + strconv.FormatInt(fieldID, 10)
}

// NotifyPestRisk publishes the alert as JSON, retained so late subscribers see the current state
func (p *Publisher) NotifyPestRisk(ctx context.Context, alert ports.PestAlert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal pest alert: %w", err)
	}

	topic := p.Topic(alert.FieldID)
	token := p.client.Publish(topic, p.qos, true, payload)

	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.timeout):
		return fmt.Errorf("publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	log.Info().Str("topic", topic).Str("alert_id", alert.ID).Msg("published pest alert")
	return nil
}

// Ready reports whether the broker connection is up
func (p *Publisher) Ready(ctx context.Context) error {
	if !p.client.IsConnectionOpen() {
		return errors.New("mqtt not connected")
	}
	return nil
}

// Close disconnects from the broker
func (p *Publisher) Close() {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
		log.Info().Msg("mqtt connection closed")
	}
}
