// Package telemetry publishes telescope state transitions to an MQTT broker
// for external monitoring. It is an optional, disabled-by-default enrichment:
// no core operation depends on a publish succeeding.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/nexstar-alpaca/bridge/pkg/healthcheck"
	"github.com/nexstar-alpaca/bridge/pkg/mqtt"
	"go.uber.org/zap"
)

// TelescopeState is the payload published on a state transition.
type TelescopeState struct {
	DeviceNumber   int       `json:"device_number"`
	Connected      bool      `json:"connected"`
	Slewing        bool      `json:"slewing"`
	Tracking       bool      `json:"tracking"`
	AtPark         bool      `json:"at_park"`
	RightAscension float64   `json:"right_ascension_hours"`
	Declination    float64   `json:"declination_degrees"`
	Timestamp      time.Time `json:"timestamp"`
}

// Publisher publishes telescope state over MQTT. A nil *Publisher is valid
// and PublishState becomes a no-op, so callers don't need to branch on
// whether telemetry is configured.
type Publisher struct {
	client *mqtt.Client
	logger *zap.Logger
}

// NewPublisher connects to the given broker and returns a Publisher.
// Returns an error only if the broker connection itself fails; callers
// that don't configure a broker URL should simply not call this and pass
// a nil *Publisher around instead.
func NewPublisher(cfg *mqtt.Config, logger *zap.Logger) (*Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := mqtt.NewClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := client.Connect(); err != nil {
		return nil, err
	}
	return &Publisher{client: client, logger: logger.With(zap.String("component", "telemetry"))}, nil
}

// PublishState publishes a telescope state snapshot. Errors are logged, not
// returned: a failed telemetry publish must never fail the ASCOM operation
// that triggered it.
func (p *Publisher) PublishState(state TelescopeState) {
	if p == nil || p.client == nil {
		return
	}
	state.Timestamp = state.Timestamp.UTC()
	msg, err := mqtt.NewMessage(mqtt.MessageTypeEvent, source(state.DeviceNumber), state)
	if err != nil {
		p.logger.Warn("failed to envelope telescope state", zap.Error(err))
		return
	}
	topic := mqtt.TelescopeStateTopic(state.DeviceNumber)
	if err := p.client.PublishJSON(topic, 0, true, msg); err != nil {
		p.logger.Warn("failed to publish telescope state", zap.Error(err))
	}
}

// PublishHealth publishes an aggregated health report for the bridge on the
// given device's health topic. Unlike PublishState it returns its errors: a
// publish failure is logged and returned, an envelope failure only returned.
func (p *Publisher) PublishHealth(deviceNumber int, report *healthcheck.AggregatedResult) error {
	if p == nil || p.client == nil {
		return nil
	}
	msg, err := mqtt.NewMessage(mqtt.MessageTypeStatus, source(deviceNumber), report)
	if err != nil {
		return err
	}
	topic := mqtt.TelescopeHealthTopic(deviceNumber)
	if err := p.client.PublishJSON(topic, 0, true, msg); err != nil {
		p.logger.Warn("failed to publish health report", zap.Error(err))
		return err
	}
	return nil
}

func source(deviceNumber int) string {
	return fmt.Sprintf("nexstar-alpacad:telescope/%d", deviceNumber)
}

// Close disconnects the underlying MQTT client, if any.
func (p *Publisher) Close() {
	if p == nil || p.client == nil {
		return
	}
	p.client.Disconnect()
}

// Check implements healthcheck.Checker, reporting the MQTT broker
// connection state.
func (p *Publisher) Check(_ context.Context) *healthcheck.Result {
	status := healthcheck.StatusHealthy
	message := "mqtt publisher connected"
	if p == nil || p.client == nil || !p.client.IsConnected() {
		status = healthcheck.StatusUnhealthy
		message = "mqtt publisher disconnected"
	}
	return &healthcheck.Result{
		ComponentName: p.Name(),
		Status:        status,
		Message:       message,
		Timestamp:     time.Now(),
	}
}

// Name implements healthcheck.Checker.
func (p *Publisher) Name() string { return "telemetry_publisher" }
