package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome 连接尝试结果
type Outcome string

// 连接尝试结果取值
const (
	OutcomeSuccess          Outcome = "success"
	OutcomeRefused          Outcome = "refused"
	OutcomeResolveFailed    Outcome = "resolve_failed"
	OutcomeConnectTimeout   Outcome = "connect_timeout"
	OutcomeConnectFailed    Outcome = "connect_failed"
	OutcomeInterrupted      Outcome = "interrupted"
	OutcomeHandshakeTimeout Outcome = "handshake_timeout"
	OutcomeStopping         Outcome = "stopping"
)

// TransportMetrics 单个传输客户端的 Prometheus 指标
type TransportMetrics struct {
	attempts *prometheus.CounterVec
	latency  prometheus.Histogram
}

// NewTransportMetrics 创建并注册传输指标
//
// reg 为 nil 时不注册，指标仍可正常记录。同名指标已注册时复用已有的 collector。
func NewTransportMetrics(reg prometheus.Registerer, namespace, protocol string) *TransportMetrics {
	labels := prometheus.Labels{"protocol": protocol}
	m := &TransportMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "transport_client",
			Name:        "connect_attempts_total",
			Help:        "Outbound connection attempts by outcome.",
			ConstLabels: labels,
		}, []string{"outcome"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "transport_client",
			Name:        "establish_seconds",
			Help:        "Time from request to an established messenger.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
	if reg == nil {
		return m
	}
	m.attempts = register(reg, m.attempts)
	m.latency = register(reg, m.latency)
	return m
}

// ObserveAttempt 记录一次连接尝试
//
// 只有成功的尝试计入建立耗时。
func (m *TransportMetrics) ObserveAttempt(outcome Outcome, elapsed time.Duration) {
	m.attempts.WithLabelValues(string(outcome)).Inc()
	if outcome == OutcomeSuccess {
		m.latency.Observe(elapsed.Seconds())
	}
}

// Attempts 返回指定结果的计数器，供测试与诊断读取
func (m *TransportMetrics) Attempts(outcome Outcome) prometheus.Counter {
	return m.attempts.WithLabelValues(string(outcome))
}

// RegisterPoolGauge 注册连接池大小的 GaugeFunc
func RegisterPoolGauge(reg prometheus.Registerer, namespace, protocol string, size func() int) {
	if reg == nil {
		return
	}
	g := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Subsystem:   "transport_client",
		Name:        "pooled_channels",
		Help:        "Channels currently held by the connection pool.",
		ConstLabels: prometheus.Labels{"protocol": protocol},
	}, func() float64 { return float64(size()) })
	if err := reg.Register(g); err != nil {
		logger.Debug("连接池指标未注册", "protocol", protocol, "err", err)
	}
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		logger.Debug("指标注册失败", "err", err)
	}
	return c
}
