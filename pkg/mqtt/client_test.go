package mqtt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// bridgeConfig is the shape cmd/nexstar-alpacad builds when --mqtt-broker
// is set.
func bridgeConfig() *Config {
	return &Config{
		BrokerURL:            "tcp://localhost:1883",
		ClientID:             "nexstar-alpacad",
		KeepAlive:            60 * time.Second,
		ConnectTimeout:       5 * time.Second,
		AutoReconnect:        true,
		MaxReconnectInterval: time.Minute,
	}
}

func TestNewClientRejectsNilConfig(t *testing.T) {
	client, err := NewClient(nil, zap.NewNop())
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestNewClientBridgeConfig(t *testing.T) {
	cfg := bridgeConfig()
	client, err := NewClient(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, cfg, client.config)
}

func TestNewClientNilLoggerDefaultsToNop(t *testing.T) {
	client, err := NewClient(bridgeConfig(), nil)
	require.NoError(t, err)
	assert.NotNil(t, client.logger)
}

func TestPublishRequiresConnection(t *testing.T) {
	client, err := NewClient(bridgeConfig(), nil)
	require.NoError(t, err)

	// No broker is running in the test environment; the client must refuse
	// to publish rather than block on a dead connection.
	assert.False(t, client.IsConnected())
	err = client.Publish(TelescopeStateTopic(0), 0, true, []byte("{}"))
	assert.Error(t, err)
}

func TestPublishJSONRejectsNonSerializablePayload(t *testing.T) {
	client, err := NewClient(bridgeConfig(), nil)
	require.NoError(t, err)

	err = client.PublishJSON(TelescopeStateTopic(0), 0, true, func() {})
	assert.Error(t, err, "a non-serializable payload fails before the connection check")
}
