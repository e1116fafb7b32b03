// Package mqtt provides the MQTT client the bridge's telemetry side channel
// publishes through. The bridge is publish-only — it announces telescope
// state and health, and never consumes commands off the broker — so the
// wrapper exposes connect/publish/disconnect and nothing else.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// Client wraps a paho MQTT connection with the reconnect and JSON-publish
// behavior the telemetry publisher needs.
type Client struct {
	client mqtt.Client
	logger *zap.Logger
	config *Config
}

// Config holds the broker connection settings. The broker URL comes from
// the bridge's --mqtt-broker flag (or NEXSTAR_MQTT_BROKER_URL); everything
// else has a sensible daemon default.
type Config struct {
	// BrokerURL is the MQTT broker URL (e.g. "tcp://localhost:1883").
	BrokerURL string
	// ClientID identifies this bridge process to the broker.
	ClientID string
	// Username and Password are optional broker credentials.
	Username string
	Password string
	// KeepAlive is the MQTT keep-alive interval.
	KeepAlive time.Duration
	// ConnectTimeout bounds the initial connection attempt.
	ConnectTimeout time.Duration
	// AutoReconnect re-establishes a dropped broker connection in the
	// background; telemetry publishes fail soft in the meantime.
	AutoReconnect bool
	// MaxReconnectInterval caps the reconnect backoff.
	MaxReconnectInterval time.Duration
}

// NewClient builds a client for the given broker configuration. The
// connection is not opened until Connect is called, so a bridge configured
// without a broker never touches the network.
func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("mqtt: config cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.BrokerURL)
	opts.SetClientID(config.ClientID)

	if config.Username != "" {
		opts.SetUsername(config.Username)
	}
	if config.Password != "" {
		opts.SetPassword(config.Password)
	}

	opts.SetKeepAlive(config.KeepAlive)
	opts.SetConnectTimeout(config.ConnectTimeout)
	opts.SetAutoReconnect(config.AutoReconnect)
	opts.SetMaxReconnectInterval(config.MaxReconnectInterval)

	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		logger.Warn("mqtt connection lost, telemetry suspended", zap.Error(err))
	})
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		logger.Info("mqtt connected", zap.String("broker", config.BrokerURL))
	})
	opts.SetReconnectingHandler(func(client mqtt.Client, opts *mqtt.ClientOptions) {
		logger.Info("mqtt reconnecting", zap.String("broker", config.BrokerURL))
	})

	return &Client{
		client: mqtt.NewClient(opts),
		logger: logger.With(zap.String("component", "mqtt")),
		config: config,
	}, nil
}

// Connect establishes the broker connection, blocking up to ConnectTimeout.
func (c *Client) Connect() error {
	c.logger.Info("connecting to mqtt broker", zap.String("broker", c.config.BrokerURL))

	token := c.client.Connect()
	if !token.WaitTimeout(c.config.ConnectTimeout) {
		return fmt.Errorf("mqtt: connection timeout after %v", c.config.ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt: connect: %w", err)
	}
	return nil
}

// Disconnect closes the broker connection with a short grace period for
// any in-flight publish.
func (c *Client) Disconnect() {
	c.logger.Info("disconnecting from mqtt broker")
	c.client.Disconnect(250)
}

// IsConnected reports whether the broker connection is currently up.
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

// Publish sends payload on topic. The telemetry publisher uses QoS 0 with
// the retained flag set, so a late-joining monitor immediately sees the
// telescope's last announced state.
func (c *Client) Publish(topic string, qos byte, retained bool, payload []byte) error {
	if !c.IsConnected() {
		return fmt.Errorf("mqtt: client not connected")
	}

	token := c.client.Publish(topic, qos, retained, payload)
	token.Wait()

	if err := token.Error(); err != nil {
		c.logger.Warn("publish failed", zap.String("topic", topic), zap.Error(err))
		return fmt.Errorf("mqtt: publish: %w", err)
	}

	c.logger.Debug("published", zap.String("topic", topic), zap.Int("size", len(payload)))
	return nil
}

// PublishJSON serializes payload (typically a Message envelope) to JSON and
// publishes it.
func (c *Client) PublishJSON(topic string, qos byte, retained bool, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("mqtt: marshal payload: %w", err)
	}
	return c.Publish(topic, qos, retained, data)
}
