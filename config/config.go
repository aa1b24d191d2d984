// Package config 提供统一的配置管理
//
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON 加载
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	cfg.Transport.HandshakeTimeout = config.Duration(5 * time.Second)
//
//	cfg, err := config.LoadFile("overlay.json")
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Config 完整配置
type Config struct {
	// Identity 本地身份
	Identity IdentityConfig `json:"identity"`

	// Transport 传输层
	Transport TransportConfig `json:"transport"`

	// Messenger 消息器
	Messenger MessengerConfig `json:"messenger"`

	// Metrics 指标
	Metrics MetricsConfig `json:"metrics"`
}

// MessengerConfig 异步消息器配置
type MessengerConfig struct {
	// SendQueueSize 发送队列长度，队列满时 Send 立即失败
	SendQueueSize int `json:"send_queue_size"`

	// MaxMessageSize 单帧最大字节数
	MaxMessageSize int `json:"max_message_size"`

	// CompressThreshold 元素数据超过该字节数时压缩，0 表示不压缩
	CompressThreshold int `json:"compress_threshold"`

	// WriteTimeout 单帧写超时
	WriteTimeout Duration `json:"write_timeout"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled   bool   `json:"enabled"`
	Namespace string `json:"namespace"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Identity:  DefaultIdentityConfig(),
		Transport: DefaultTransportConfig(),
		Messenger: DefaultMessengerConfig(),
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "overlay",
		},
	}
}

// DefaultMessengerConfig 返回默认消息器配置
func DefaultMessengerConfig() MessengerConfig {
	return MessengerConfig{
		SendQueueSize:     256,
		MaxMessageSize:    4 << 20, // 4 MB
		CompressThreshold: 8 << 10, // 8 KB
		WriteTimeout:      Duration(30 * time.Second),
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := c.Identity.Validate(); err != nil {
		return err
	}
	if err := c.Transport.Validate(); err != nil {
		return err
	}
	if err := c.Messenger.Validate(); err != nil {
		return err
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return errors.New("metrics.namespace must not be empty when metrics are enabled")
	}
	return nil
}

// WithDefaults 返回副本，未设置（非正）的字段取默认值
//
// CompressThreshold 为 0 表示不压缩，保持原值。
func (c MessengerConfig) WithDefaults() MessengerConfig {
	d := DefaultMessengerConfig()
	if c.SendQueueSize <= 0 {
		c.SendQueueSize = d.SendQueueSize
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.CompressThreshold < 0 {
		c.CompressThreshold = d.CompressThreshold
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	return c
}

// Validate 验证消息器配置
func (c MessengerConfig) Validate() error {
	if c.SendQueueSize <= 0 {
		return errors.New("messenger.send_queue_size must be positive")
	}
	if c.MaxMessageSize < 1024 {
		return errors.New("messenger.max_message_size must be at least 1024")
	}
	if c.CompressThreshold < 0 {
		return errors.New("messenger.compress_threshold must not be negative")
	}
	if c.WriteTimeout <= 0 {
		return errors.New("messenger.write_timeout must be positive")
	}
	return nil
}

// FromJSON 从 JSON 数据创建配置，缺省字段保持默认值
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadFile 从文件加载配置
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return FromJSON(data)
}
