package client

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/internal/core/metrics"
	"github.com/dep2p/go-overlay/internal/core/transport/channel"
	"github.com/dep2p/go-overlay/internal/core/transport/handshake"
	pkgif "github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/lib/log"
	"github.com/dep2p/go-overlay/pkg/types"
)

var logger = log.Logger("core/transport/client")

// ============================================================================
//                              生命周期状态
// ============================================================================

// State 客户端生命周期状态
type State int32

const (
	// StateNotStarted 尚未启动
	StateNotStarted State = iota
	// StateStarted 已启动，接受连接请求
	StateStarted
	// StateStopping 正在关闭，连接池已开始批量关闭
	StateStopping
	// StateStopped 已停止
	StateStopped
)

// String 返回状态名
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NotStarted"
	case StateStarted:
		return "Started"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// ============================================================================
//                              Client
// ============================================================================

// 确保实现接口
var _ pkgif.MessageSender = (*Client)(nil)

// Params 客户端参数
type Params struct {
	// Transport 连接与握手超时
	Transport config.TransportConfig

	// Messenger 消息器参数
	Messenger config.MessengerConfig

	// Factory 连接工厂，由组合根提供
	Factory pkgif.ChannelFactory

	// Translator 地址转换器，由组合根提供
	Translator pkgif.AddressTranslator

	// PeerID 本地节点 ID
	PeerID types.PeerID

	// GroupID 本地所属组
	GroupID types.PeerGroupID

	// PublicAddress 本地返回地址，为空时使用 PeerID 的逻辑地址
	PublicAddress types.EndpointAddress
}

// Option 客户端选项
type Option func(*Client)

// WithClock 使用指定时钟计算超时
func WithClock(clk clock.Clock) Option {
	return func(c *Client) { c.clk = clk }
}

// WithRegisterer 在 reg 上注册 Prometheus 指标
func WithRegisterer(reg prometheus.Registerer, namespace string) Option {
	return func(c *Client) {
		c.reg = reg
		c.namespace = namespace
	}
}

// WithBandwidthReporter 统计消息器收发字节
func WithBandwidthReporter(r metrics.Reporter) Option {
	return func(c *Client) { c.bandwidth = r }
}

// Client 出站连接客户端
//
// 对外表现为一个 MessageSender：GetMessenger 建立连接、完成握手，
// 返回绑定该连接的 AsyncMessenger。
type Client struct {
	p         Params
	clk       clock.Clock
	reg       prometheus.Registerer
	namespace string
	bandwidth metrics.Reporter
	metrics   *metrics.TransportMetrics

	// state 无锁读取；状态迁移在 mu 内进行
	state atomic.Int32
	mu    sync.Mutex

	svc         pkgif.EndpointService
	listener    pkgif.MessengerEventListener
	pool        *channel.Group
	closeFuture *channel.GroupFuture
}

// New 创建客户端
func New(p Params, opts ...Option) (*Client, error) {
	if p.Factory == nil {
		return nil, ErrNilFactory
	}
	if p.Translator == nil {
		return nil, ErrNilTranslator
	}
	if p.PeerID.IsEmpty() {
		p.PeerID = types.NewPeerID()
	}
	if p.GroupID == "" {
		p.GroupID = types.NetGroupID
	}
	if p.PublicAddress.IsZero() {
		p.PublicAddress = p.PeerID.EndpointAddress()
	}
	defaults := config.DefaultTransportConfig()
	if p.Transport.ConnectTimeout <= 0 {
		p.Transport.ConnectTimeout = defaults.ConnectTimeout
	}
	if p.Transport.HandshakeTimeout <= 0 {
		p.Transport.HandshakeTimeout = defaults.HandshakeTimeout
	}
	p.Messenger = p.Messenger.WithDefaults()

	c := &Client{
		p:         p,
		clk:       clock.New(),
		namespace: "overlay",
	}
	for _, opt := range opts {
		opt(c)
	}

	protocol := p.Translator.ProtocolName()
	c.pool = channel.NewGroup(protocol)
	c.metrics = metrics.NewTransportMetrics(c.reg, c.namespace, protocol)
	metrics.RegisterPoolGauge(c.reg, c.namespace, protocol, c.pool.Len)
	return c, nil
}

// ============================================================================
//                              生命周期
// ============================================================================

// Start 向端点服务注册本客户端
//
// 端点服务返回 nil 监听器视为拒绝，状态保持 NotStarted。
func (c *Client) Start(svc pkgif.EndpointService) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s := c.State(); s != StateNotStarted {
		logger.Warn("客户端已启动，忽略重复启动", "protocol", c.ProtocolName(), "state", s.String())
		return ErrAlreadyStarted
	}
	if svc == nil {
		logger.Warn("端点服务为空，拒绝启动", "protocol", c.ProtocolName())
		return ErrRegistrationRefused
	}

	c.svc = svc
	l := svc.AddMessageTransport(c)
	if l == nil {
		c.svc = nil
		logger.Warn("端点服务拒绝注册传输", "protocol", c.ProtocolName())
		return ErrRegistrationRefused
	}
	c.listener = l
	c.state.Store(int32(StateStarted))

	logger.Info("传输客户端已启动",
		"protocol", c.ProtocolName(),
		"peer", c.p.PeerID.ShortString(),
		"publicAddr", c.p.PublicAddress.String())
	return nil
}

// BeginStop 开始关闭：异步关闭连接池中的所有连接，不阻塞
func (c *Client) BeginStop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s := c.State(); s != StateStarted {
		logger.Warn("客户端未启动，忽略 BeginStop", "protocol", c.ProtocolName(), "state", s.String())
		return ErrNotStarted
	}

	c.closeFuture = c.pool.CloseAll()
	c.state.Store(int32(StateStopping))
	logger.Debug("传输客户端开始关闭", "protocol", c.ProtocolName(), "pooled", c.pool.Len())
	return nil
}

// Stop 等待批量关闭完成，释放工厂资源并从端点服务注销
//
// ctx 结束时返回 ErrInterrupted，状态保持 Stopping，可以再次调用。
// 连接关闭与资源释放中的错误会被返回，但不影响状态迁移。
func (c *Client) Stop(ctx context.Context) error {
	c.mu.Lock()
	if s := c.State(); s != StateStopping {
		c.mu.Unlock()
		logger.Warn("客户端未处于关闭流程，忽略 Stop", "protocol", c.ProtocolName(), "state", s.String())
		return ErrNotStopping
	}
	closing := c.closeFuture
	c.mu.Unlock()

	// 等待期间不持有 mu
	select {
	case <-closing.Done():
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// 并发的 Stop 已经完成收尾
	if c.State() != StateStopping {
		return nil
	}

	var errs error
	if err := closing.Err(); err != nil {
		logger.Debug("关闭连接时出现错误", "protocol", c.ProtocolName(), "err", err)
		errs = multierr.Append(errs, err)
	}
	if err := c.p.Factory.ReleaseExternalResources(); err != nil {
		logger.Warn("释放连接工厂资源失败", "protocol", c.ProtocolName(), "err", err)
		errs = multierr.Append(errs, err)
	}
	c.svc.RemoveMessageTransport(c)
	c.state.Store(int32(StateStopped))

	logger.Info("传输客户端已停止", "protocol", c.ProtocolName())
	return errs
}

// State 当前生命周期状态
func (c *Client) State() State {
	return State(c.state.Load())
}

// PoolSize 连接池中的连接数
func (c *Client) PoolSize() int {
	return c.pool.Len()
}

// ============================================================================
//                              GetMessenger
// ============================================================================

// GetMessenger 连接到 dest，完成握手后返回消息器
//
// 阻塞时间不超过连接超时与握手超时之和。任一阶段失败都返回 nil 与哨兵错误：
//
//   - ErrNotStarted：客户端不在 Started 状态，不产生任何网络 I/O
//   - ErrResolve：地址无法解析
//   - ErrConnectTimeout / ErrConnectFailed：物理连接未建立，尝试已取消
//   - ErrHandshakeTimeout：对端未完成握手，连接已关闭
//   - ErrInterrupted：ctx 在等待期间结束，连接已取消或关闭
//   - ErrClientStopping：握手完成时客户端已开始关闭
func (c *Client) GetMessenger(ctx context.Context, dest types.EndpointAddress) (pkgif.Messenger, error) {
	if s := c.State(); s != StateStarted {
		logger.Warn("客户端未启动，拒绝连接请求", "dest", dest.String(), "state", s.String())
		c.metrics.ObserveAttempt(metrics.OutcomeRefused, 0)
		return nil, ErrNotStarted
	}
	begin := c.clk.Now()

	addr, err := c.p.Translator.ToSocketAddress(dest)
	if err != nil {
		logger.Debug("无法解析目标地址", "dest", dest.String(), "err", err)
		c.metrics.ObserveAttempt(metrics.OutcomeResolveFailed, 0)
		return nil, fmt.Errorf("%w: %s: %v", ErrResolve, dest, err)
	}

	// 每次尝试使用独立的 registry
	reg := newConnRegistry()
	hs := handshake.Config{
		PeerID:        c.p.PeerID,
		GroupID:       c.p.GroupID,
		PublicAddress: c.p.PublicAddress,
	}
	fut := c.p.Factory.Connect(ctx, addr, handshake.Pipeline(hs, dest.Base(), reg.complete))

	if err := c.awaitConnect(ctx, fut, dest); err != nil {
		return nil, err
	}
	ch := fut.Channel()

	if err := c.awaitHandshake(ctx, reg, ch, dest); err != nil {
		return nil, err
	}

	if !c.pool.Add(ch) {
		ch.Close()
		logger.Debug("客户端正在关闭，丢弃新连接", "dest", dest.String())
		c.metrics.ObserveAttempt(metrics.OutcomeStopping, 0)
		return nil, ErrClientStopping
	}

	m := NewMessenger(ch, MessengerParams{
		Protocol:     c.ProtocolName(),
		GroupID:      c.p.GroupID,
		LocalPeer:    c.p.PeerID,
		LocalAddress: c.p.PublicAddress,
		Destination:  reg.directedAt,
		Logical:      reg.logical,
		Service:      c.svc,
		Config:       c.p.Messenger,
		Bandwidth:    c.bandwidth,
	})

	c.metrics.ObserveAttempt(metrics.OutcomeSuccess, c.clk.Since(begin))
	logger.Info("连接已建立",
		"dest", dest.String(),
		"logical", reg.logical.String(),
		"remote", ch.RemoteAddr().String())

	if c.listener != nil {
		c.listener.MessengerReady(&types.EvtMessengerReady{
			Protocol:       c.ProtocolName(),
			Direction:      types.DirOutbound,
			LocalAddress:   c.p.PublicAddress,
			RemoteAddress:  reg.directedAt,
			LogicalAddress: reg.logical,
			Time:           c.clk.Now(),
		}, m)
	}
	return m, nil
}

// awaitConnect 等待物理连接完成，超时或中断时取消连接
func (c *Client) awaitConnect(ctx context.Context, fut pkgif.ConnectFuture, dest types.EndpointAddress) error {
	timeout := c.p.Transport.ConnectTimeout.Duration()
	timer := c.clk.Timer(timeout)
	defer timer.Stop()

	select {
	case <-fut.Done():
	case <-timer.C:
		fut.Cancel()
		logger.Debug("连接超时", "dest", dest.String(), "timeout", timeout)
		c.metrics.ObserveAttempt(metrics.OutcomeConnectTimeout, 0)
		return ErrConnectTimeout
	case <-ctx.Done():
		fut.Cancel()
		logger.Debug("连接等待被中断", "dest", dest.String(), "err", ctx.Err())
		c.metrics.ObserveAttempt(metrics.OutcomeInterrupted, 0)
		return fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
	}

	if fut.IsSuccess() {
		return nil
	}
	if ctx.Err() != nil {
		logger.Debug("连接等待被中断", "dest", dest.String(), "err", ctx.Err())
		c.metrics.ObserveAttempt(metrics.OutcomeInterrupted, 0)
		return fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
	}
	logger.Debug("连接失败", "dest", dest.String(), "err", fut.Err())
	c.metrics.ObserveAttempt(metrics.OutcomeConnectFailed, 0)
	return fmt.Errorf("%w: %v", ErrConnectFailed, fut.Err())
}

// awaitHandshake 等待握手回调，超时或中断时关闭连接
func (c *Client) awaitHandshake(ctx context.Context, reg *connRegistry, ch pkgif.Channel, dest types.EndpointAddress) error {
	timeout := c.p.Transport.HandshakeTimeout.Duration()
	timer := c.clk.Timer(timeout)
	defer timer.Stop()

	select {
	case <-reg.done:
		return nil
	case <-timer.C:
		ch.Close()
		logger.Debug("握手超时，对端不是有效的协议参与者", "dest", dest.String(), "timeout", timeout)
		c.metrics.ObserveAttempt(metrics.OutcomeHandshakeTimeout, 0)
		return ErrHandshakeTimeout
	case <-ctx.Done():
		ch.Close()
		logger.Debug("握手等待被中断", "dest", dest.String(), "err", ctx.Err())
		c.metrics.ObserveAttempt(metrics.OutcomeInterrupted, 0)
		return fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
	}
}

// ============================================================================
//                              访问器
// ============================================================================

// Ping 已废弃，始终返回 ErrPingUnsupported
func (c *Client) Ping(types.EndpointAddress) error {
	return ErrPingUnsupported
}

// AllowsRouting 本客户端建立的连接可用于中转
func (c *Client) AllowsRouting() bool { return true }

// IsConnectionOriented 始终为 true
func (c *Client) IsConnectionOriented() bool { return true }

// PublicAddress 本地返回地址
func (c *Client) PublicAddress() types.EndpointAddress { return c.p.PublicAddress }

// ProtocolName 协议名，取自地址转换器
func (c *Client) ProtocolName() string { return c.p.Translator.ProtocolName() }

// EndpointService 当前注册的端点服务，未启动时为 nil
func (c *Client) EndpointService() pkgif.EndpointService {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.svc
}

// Metrics 连接尝试指标
func (c *Client) Metrics() *metrics.TransportMetrics { return c.metrics }
