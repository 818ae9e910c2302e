// Package events announces newly created devices on an MQTT broker so other
// home-automation services can pick them up.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doidoi-app/doidoi-cli/internal/api"
	"github.com/doidoi-app/doidoi-cli/internal/logging"
	"github.com/doidoi-app/doidoi-cli/pkg/models"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultQoS delivers each event at least once
	DefaultQoS = 1

	// DefaultPublishTimeout bounds how long a publish may wait for the broker
	DefaultPublishTimeout = 5 * time.Second
)

// Config holds broker settings
type Config struct {
	Broker   string // e.g. tcp://localhost:1883
	Topic    string
	ClientID string
}

// DeviceCreated is the payload published for each new device
type DeviceCreated struct {
	Category  string    `json:"category"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	Message   string    `json:"message,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewDeviceCreated builds the event for a created draft
func NewDeviceCreated(draft models.Draft, resp *api.CreateResponse, now time.Time) DeviceCreated {
	ev := DeviceCreated{
		Category:  draft.Kind.Endpoint(),
		Type:      draft.Kind.Value(),
		Name:      draft.Name,
		CreatedAt: now.UTC(),
	}
	if resp != nil {
		ev.Message = resp.Message
		ev.RequestID = resp.RequestID
	}
	return ev
}

// publishClient is the subset of mqtt.Client the publisher needs
type publishClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Publisher sends DeviceCreated events
type Publisher struct {
	client  publishClient
	topic   string
	timeout time.Duration
	now     func() time.Time
}

// Connect dials the broker and returns a ready publisher
func Connect(cfg Config) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt broker is required")
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "doidoi-cli-" + uuid.NewString()
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(clientID)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logging.Warn("MQTT connection lost", zap.Error(err))
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.WaitTimeout(DefaultPublishTimeout) && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	if !client.IsConnected() {
		client.Disconnect(0)
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: timed out", cfg.Broker)
	}

	logging.Debug("Connected to MQTT broker",
		zap.String("broker", cfg.Broker),
		zap.String("client_id", clientID),
	)

	return newPublisher(client, cfg.Topic), nil
}

func newPublisher(client publishClient, topic string) *Publisher {
	return &Publisher{
		client:  client,
		topic:   topic,
		timeout: DefaultPublishTimeout,
		now:     time.Now,
	}
}

// DeviceCreated publishes an event for a device created through the form
func (p *Publisher) DeviceCreated(ctx context.Context, draft models.Draft, resp *api.CreateResponse) error {
	payload, err := json.Marshal(NewDeviceCreated(draft, resp, p.now()))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	token := p.client.Publish(p.topic, DefaultQoS, false, payload)

	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.timeout):
		return fmt.Errorf("publish to %s timed out", p.topic)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	logging.Debug("Published device event", zap.String("topic", p.topic), zap.String("name", draft.Name))
	return nil
}

// Close disconnects from the broker
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
