package notifier

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"bagcount-gateway/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Event names published to dashboards.
const (
	EventCountUpdated   = "count_updated"
	EventOrderStarted   = "order_started"
	EventOrderCompleted = "order_completed"
	EventBatchCompleted = "batch_completed"
	EventRunStateChange = "run_state_changed"
	EventDeviceOffline  = "device_offline"
	EventDeviceOnline   = "device_online"
	EventCommandFailed  = "device_command_failed"
)

// Event is the envelope published for every notification.
type Event struct {
	Event     string      `json:"event"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Publisher fans counting events out over MQTT. It replaces the transient UI
// banners of a browser front end: andon displays and dashboards subscribe to
// the event topic instead. With no broker configured it degrades to a no-op
// that only logs, so the gateway runs standalone.
type Publisher struct {
	client mqtt.Client
	topic  string
	logger *slog.Logger
}

// NewPublisher connects to the broker from config. An empty broker URL returns
// a disabled publisher.
func NewPublisher(cfg *config.Config, logger *slog.Logger) (*Publisher, error) {
	p := &Publisher{
		topic:  cfg.MQTTTopic,
		logger: logger.With("component", "notifier"),
	}

	if cfg.MQTTBroker == "" {
		p.logger.Info("No MQTT broker configured, event publishing disabled")
		return p, nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientID).
		SetUsername(cfg.MQTTUsername).
		SetPassword(cfg.MQTTPassword).
		SetKeepAlive(60 * time.Second).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(10 * time.Second).
		SetCleanSession(true)

	opts.SetOnConnectHandler(func(c mqtt.Client) {
		p.logger.Info("Connected to MQTT broker", "broker", cfg.MQTTBroker)
	})
	opts.SetConnectionLostHandler(func(c mqtt.Client, err error) {
		p.logger.Error("MQTT connection lost. Reconnecting...", slog.Any("error", err))
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	p.client = client

	return p, nil
}

// Publish sends one event. Failures are logged and swallowed: notifications
// are best-effort and must never block or fail a counting operation.
func (p *Publisher) Publish(event string, data interface{}) {
	msg := Event{
		Event:     event,
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Data:      data,
	}

	if p.client == nil || !p.client.IsConnected() {
		p.logger.Debug("Event not published (no broker connection)", "event", event)
		return
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		p.logger.Error("Failed to marshal event", "event", event, slog.Any("error", err))
		return
	}

	token := p.client.Publish(p.topic, 0, false, payload)
	if token.Wait() && token.Error() != nil {
		p.logger.Error("Failed to publish event", "event", event, slog.Any("error", token.Error()))
		return
	}

	p.logger.Debug("Event published", "event", event, "topic", p.topic)
}

// IsConnected reports whether the broker connection is up.
func (p *Publisher) IsConnected() bool {
	return p.client != nil && p.client.IsConnected()
}

// Disconnect gracefully closes the broker connection.
func (p *Publisher) Disconnect() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
		p.logger.Info("MQTT client disconnected")
	}
}
