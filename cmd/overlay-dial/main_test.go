package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Usage(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run(nil, &out))
	assert.Error(t, run([]string{"dial"}, &out))
	assert.Error(t, run([]string{"dial", "not-an-address"}, &out))
	assert.Error(t, run([]string{"dial", "udp://127.0.0.1:1"}, &out))
	assert.Error(t, run([]string{"frob", "tcp://127.0.0.1:1"}, &out))
}

func TestLoadConfig_Overrides(t *testing.T) {
	cfg, err := loadConfig(options{connectTimeout: time.Second}, "quic")
	require.NoError(t, err)
	assert.Equal(t, "quic", cfg.Transport.Protocol)
	assert.Equal(t, time.Second, cfg.Transport.ConnectTimeout.Duration())
	assert.Equal(t, 15*time.Second, cfg.Transport.HandshakeTimeout.Duration())
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"transport": {"handshake_timeout": "2s"}}`), 0o600))

	cfg, err := loadConfig(options{configFile: path}, "ws")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Transport.HandshakeTimeout.Duration())
	assert.Equal(t, "ws", cfg.Transport.Protocol)

	_, err = loadConfig(options{configFile: filepath.Join(t.TempDir(), "missing.json")}, "tcp")
	assert.Error(t, err)
}
