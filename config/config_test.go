package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 5*time.Second, cfg.Transport.ConnectTimeout.Duration())
	assert.Equal(t, 15*time.Second, cfg.Transport.HandshakeTimeout.Duration())
	assert.Equal(t, 256, cfg.Messenger.SendQueueSize)
	assert.Equal(t, "tcp", cfg.Transport.Protocol)
}

func TestFromJSON_OverridesTimeouts(t *testing.T) {
	cfg, err := FromJSON([]byte(`{
		"transport": {"connect_timeout": "250ms", "handshake_timeout": 1000000000},
		"messenger": {"send_queue_size": 8}
	}`))
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Transport.ConnectTimeout.Duration())
	assert.Equal(t, time.Second, cfg.Transport.HandshakeTimeout.Duration())
	assert.Equal(t, 8, cfg.Messenger.SendQueueSize)
	// 未出现的字段保持默认
	assert.Equal(t, "/overlay", cfg.Transport.WebSocket.Path)
}

func TestFromJSON_Invalid(t *testing.T) {
	_, err := FromJSON([]byte(`{"transport": {"connect_timeout": "soon"}}`))
	assert.Error(t, err)

	_, err = FromJSON([]byte(`{"transport": {"connect_timeout": "0s"}}`))
	assert.Error(t, err)

	_, err = FromJSON([]byte(`{"identity": {"peer_id": "bogus"}}`))
	assert.Error(t, err)

	_, err = FromJSON([]byte(`{"transport": {"protocol": "udp"}}`))
	assert.Error(t, err)
}

func TestDuration_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Duration(1500 * time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, `"1.5s"`, string(data))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"metrics": {"enabled": false}}`), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.False(t, cfg.Metrics.Enabled)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestIdentityConfig_Resolve(t *testing.T) {
	peer, group := IdentityConfig{}.Resolve()
	assert.False(t, peer.IsEmpty())
	assert.NotEmpty(t, group)
}

func TestMessengerConfig_Validate(t *testing.T) {
	c := DefaultMessengerConfig()
	c.SendQueueSize = 0
	assert.Error(t, c.Validate())

	c = DefaultMessengerConfig()
	c.MaxMessageSize = 10
	assert.Error(t, c.Validate())
}

func TestMessengerConfig_WithDefaults(t *testing.T) {
	def := DefaultMessengerConfig()

	c := MessengerConfig{SendQueueSize: 4}.WithDefaults()
	assert.Equal(t, 4, c.SendQueueSize)
	assert.Equal(t, def.MaxMessageSize, c.MaxMessageSize)
	assert.Equal(t, def.WriteTimeout, c.WriteTimeout)
	assert.Zero(t, c.CompressThreshold)
	assert.NoError(t, c.Validate())

	c = MessengerConfig{CompressThreshold: -1}.WithDefaults()
	assert.Equal(t, def, c)
}
