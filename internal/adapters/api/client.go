package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/quentinrf/sensorice/internal/domain"
)

// Config for the backend client.
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	BreakerFailures uint32
	BreakerOpenFor  time.Duration
}

// envelope is the backend's response wrapper: {"data": ..., "message": "..."}.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Client talks to the device/sensor backend API.
// Session cookies are kept in a jar; protected calls that get a 401 refresh
// the session once and retry once.
// This implements the ports.Backend interface
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker

	mu                sync.Mutex
	onUnauthenticated func()
}

// NewClient creates a backend client
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if _, err := url.ParseRequestURI(base); err != nil || base == "" {
		return nil, fmt.Errorf("invalid backend url %q", cfg.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerOpenFor <= 0 {
		cfg.BreakerOpenFor = 30 * time.Second
	}

	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: cfg.Timeout, Jar: jar},
		breaker: newBreaker("backend", cfg.BreakerFailures, cfg.BreakerOpenFor),
	}, nil
}

func newBreaker(name string, failures uint32, openFor time.Duration) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: openFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return !domain.IsUpstreamFault(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
}

// OnUnauthenticated registers a hook run when a protected call fails even
// after the session refresh.
func (c *Client) OnUnauthenticated(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthenticated = fn
}

func (c *Client) unauthenticated() {
	c.mu.Lock()
	fn := c.onUnauthenticated
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Fields lists the paddy fields
func (c *Client) Fields(ctx context.Context) ([]domain.Field, error) {
	var fields []domain.Field
	if err := c.do(ctx, http.MethodGet, "/field", nil, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// DevicesByField returns the device directory of a field
func (c *Client) DevicesByField(ctx context.Context, fieldID int64) ([]domain.DirectoryEntry, error) {
	var entries []domain.DirectoryEntry
	body := map[string]int64{"fieldId": fieldID}
	if err := c.do(ctx, http.MethodPost, "/device/byFieldId", body, &entries); err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].FieldID = fieldID
	}
	return entries, nil
}

// NewestReadings returns the latest readings of one device
func (c *Client) NewestReadings(ctx context.Context, machineID string) (domain.Snapshot, error) {
	var readings []domain.SensorReading
	if err := c.do(ctx, http.MethodGet, "/read/newest/"+url.PathEscape(machineID), nil, &readings); err != nil {
		return domain.Snapshot{}, err
	}
	if readings == nil {
		readings = []domain.SensorReading{}
	}
	return domain.Snapshot{MachineID: machineID, Readings: readings}, nil
}

// Login starts a session and returns the signed-in user
func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	var user User
	body := map[string]string{"username": username, "password": password}
	if err := c.send(ctx, http.MethodPost, "/auth/login", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout ends the session
func (c *Client) Logout(ctx context.Context) error {
	return c.send(ctx, http.MethodDelete, "/auth/logout", nil, nil)
}

// Profile returns the user of the current session
func (c *Client) Profile(ctx context.Context) (*User, error) {
	var user User
	if err := c.send(ctx, http.MethodGet, "/auth/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Refresh renews the session cookie
func (c *Client) Refresh(ctx context.Context) error {
	return c.send(ctx, http.MethodGet, "/auth/refresh", nil, nil)
}

// do sends a protected request; a 401 triggers exactly one refresh and one retry.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	err := c.send(ctx, method, path, body, out)

	var ae *domain.AuthError
	if !errors.As(err, &ae) {
		return err
	}

	log.Debug().Str("path", path).Msg("session expired, refreshing")
	if rerr := c.Refresh(ctx); rerr != nil {
		c.unauthenticated()
		return &domain.AuthError{Op: method + " " + path, Err: fmt.Errorf("%w: refresh failed: %v", domain.ErrUnauthenticated, rerr)}
	}

	err = c.send(ctx, method, path, body, out)
	if errors.As(err, &ae) {
		c.unauthenticated()
	}
	return err
}

// send performs a single request through the breaker.
func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	op := method + " " + path

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, op, method, path, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.FetchError{Op: op, Err: domain.ErrBreakerOpen}
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s body: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &domain.FetchError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	log.Debug().
		Str("op", op).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("backend request")

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.FetchError{Op: op, Status: resp.StatusCode, Err: err}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode == http.StatusUnauthorized {
		return &domain.AuthError{Op: op, Err: domain.ErrUnauthenticated}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &domain.FetchError{Op: op, Status: resp.StatusCode, Err: errors.New(msg)}
	}

	if out == nil {
		return nil
	}
	if decodeErr != nil {
		return &domain.FetchError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", decodeErr)}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &domain.FetchError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}
