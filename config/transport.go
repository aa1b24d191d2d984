package config

import (
	"errors"
	"fmt"
	"time"
)

// TransportConfig 传输层配置
//
//   - 连接超时与握手超时相互独立，GetMessenger 最坏阻塞两者之和
//   - 各协议的连接工厂参数
type TransportConfig struct {
	// Protocol 出站使用的传输协议：tcp、quic 或 ws
	Protocol string `json:"protocol"`

	// ConnectTimeout 物理连接超时
	ConnectTimeout Duration `json:"connect_timeout"`

	// HandshakeTimeout 握手（欢迎消息交换）超时
	HandshakeTimeout Duration `json:"handshake_timeout"`

	// TCP 配置
	TCP TCPConfig `json:"tcp"`

	// QUIC 配置
	QUIC QUICConfig `json:"quic"`

	// WebSocket 配置
	WebSocket WebSocketConfig `json:"websocket"`
}

// TCPConfig TCP 连接工厂配置
type TCPConfig struct {
	KeepAlive       bool     `json:"keep_alive"`
	KeepAlivePeriod Duration `json:"keep_alive_period"`
	NoDelay         bool     `json:"no_delay"`
}

// QUICConfig QUIC 连接工厂配置
type QUICConfig struct {
	// MaxIdleTimeout 最大空闲超时
	MaxIdleTimeout Duration `json:"max_idle_timeout"`

	// KeepAlivePeriod KeepAlive 周期，0 表示禁用
	KeepAlivePeriod Duration `json:"keep_alive_period"`

	// ALPN 协商使用的应用协议
	ALPN string `json:"alpn"`
}

// WebSocketConfig WebSocket 连接工厂配置
type WebSocketConfig struct {
	// Path 升级请求路径
	Path string `json:"path"`

	// HandshakeTimeout HTTP 升级超时
	HandshakeTimeout Duration `json:"handshake_timeout"`

	ReadBufferSize  int `json:"read_buffer_size,omitempty"`
	WriteBufferSize int `json:"write_buffer_size,omitempty"`
}

// DefaultTransportConfig 返回默认传输配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		Protocol:         "tcp",
		ConnectTimeout:   Duration(5 * time.Second),  // 物理连接：5 秒
		HandshakeTimeout: Duration(15 * time.Second), // 握手：15 秒，非协议参与者由此超时淘汰
		TCP: TCPConfig{
			KeepAlive:       true,
			KeepAlivePeriod: Duration(15 * time.Second),
			NoDelay:         true,
		},
		QUIC: QUICConfig{
			MaxIdleTimeout:  Duration(30 * time.Second),
			KeepAlivePeriod: Duration(15 * time.Second),
			ALPN:            "overlay/1",
		},
		WebSocket: WebSocketConfig{
			Path:             "/overlay",
			HandshakeTimeout: Duration(10 * time.Second),
			ReadBufferSize:   4096,
			WriteBufferSize:  4096,
		},
	}
}

// Validate 验证传输配置
func (c TransportConfig) Validate() error {
	switch c.Protocol {
	case "tcp", "quic", "ws":
	default:
		return fmt.Errorf("transport.protocol %q must be one of tcp, quic, ws", c.Protocol)
	}
	if c.ConnectTimeout <= 0 {
		return errors.New("transport.connect_timeout must be positive")
	}
	if c.HandshakeTimeout <= 0 {
		return errors.New("transport.handshake_timeout must be positive")
	}
	if c.TCP.KeepAlive && c.TCP.KeepAlivePeriod <= 0 {
		return errors.New("transport.tcp.keep_alive_period must be positive when keep_alive is set")
	}
	if c.QUIC.MaxIdleTimeout <= 0 {
		return errors.New("transport.quic.max_idle_timeout must be positive")
	}
	if c.QUIC.ALPN == "" {
		return errors.New("transport.quic.alpn must not be empty")
	}
	if c.WebSocket.Path == "" || c.WebSocket.Path[0] != '/' {
		return errors.New("transport.websocket.path must start with '/'")
	}
	return nil
}
