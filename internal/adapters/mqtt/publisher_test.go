package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/quentinrf/sensorice/internal/domain"
	"github.com/quentinrf/sensorice/internal/ports"
)

type fakeToken struct {
	done chan struct{}
	err  error
}

func newToken(err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeClient records publishes; unused paho.Client methods panic via the nil embed.
type fakeClient struct {
	paho.Client

	mu        sync.Mutex
	msgs      []published
	err       error
	connected bool
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, published{topic, qos, retained, payload.([]byte)})
	return newToken(c.err)
}

func (c *fakeClient) IsConnectionOpen() bool { return c.connected }
func (c *fakeClient) IsConnected() bool      { return c.connected }
func (c *fakeClient) Disconnect(uint)        { c.connected = false }

func TestPublisher_NotifyPestRisk(t *testing.T) {
	client := &fakeClient{connected: true}
	p := NewPublisher(client, Config{QoS: 1})

	alert := ports.PestAlert{
		ID:       "alert-1",
		FieldID:  12,
		Risk:     domain.PestRisk{Planthopper: true},
		Messages: domain.PestRisk{Planthopper: true}.Messages(),
		At:       time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}

	if err := p.NotifyPestRisk(context.Background(), alert); err != nil {
		t.Fatalf("NotifyPestRisk failed: %v", err)
	}

	if len(client.msgs) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(client.msgs))
	}
	msg := client.msgs[0]
	if msg.topic != "sensorice/alerts/12" {
		t.Errorf("unexpected topic %q", msg.topic)
	}
	if msg.qos != 1 || !msg.retained {
		t.Errorf("expected retained qos 1, got qos %d retained %v", msg.qos, msg.retained)
	}

	var got ports.PestAlert
	if err := json.Unmarshal(msg.payload, &got); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if got.ID != "alert-1" || !got.Risk.Planthopper {
		t.Errorf("unexpected payload %+v", got)
	}
}

func TestPublisher_PublishError(t *testing.T) {
	client := &fakeClient{connected: true, err: errors.New("not authorised")}
	p := NewPublisher(client, Config{})

	err := p.NotifyPestRisk(context.Background(), ports.PestAlert{FieldID: 1})
	if err == nil {
		t.Fatal("expected publish error")
	}
}

func TestPublisher_TopicPrefix(t *testing.T) {
	p := NewPublisher(&fakeClient{}, Config{TopicPrefix: "farm/alerts/"})
	if got := p.Topic(3); got != "farm/alerts/3" {
		t.Errorf("expected farm/alerts/3, got %q", got)
	}
}

func TestPublisher_Ready(t *testing.T) {
	client := &fakeClient{connected: true}
	p := NewPublisher(client, Config{})

	if err := p.Ready(context.Background()); err != nil {
		t.Errorf("expected ready, got %v", err)
	}

	p.Close()
	if err := p.Ready(context.Background()); err == nil {
		t.Error("expected not ready after close")
	}
}

func TestConnect_NoBroker(t *testing.T) {
	if _, err := Connect(context.Background(), Config{}); err == nil {
		t.Error("expected error without broker")
	}
}
