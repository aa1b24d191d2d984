package tcp

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/internal/core/transport/channel"
	pkgif "github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/lib/log"
)

var logger = log.Logger("core/transport/tcp")

// ============================================================================
//                              Factory 实现
// ============================================================================

// 确保实现接口
var _ pkgif.ChannelFactory = (*Factory)(nil)

// Factory TCP 连接工厂
type Factory struct {
	cfg    config.TCPConfig
	dialer net.Dialer

	released atomic.Bool
}

// NewFactory 创建 TCP 连接工厂
func NewFactory(cfg config.TCPConfig) *Factory {
	f := &Factory{cfg: cfg}
	if cfg.KeepAlive {
		f.dialer.KeepAlive = cfg.KeepAlivePeriod.Duration()
	} else {
		f.dialer.KeepAlive = -1
	}
	return f
}

// Connect 异步建立 TCP 连接
//
// 超时由调用方控制（取消返回的 Future 或 ctx）。
func (f *Factory) Connect(ctx context.Context, addr net.Addr, init pkgif.ChannelInitializer) pkgif.ConnectFuture {
	if f.released.Load() {
		fut := channel.NewFuture(nil)
		fut.Fail(ErrFactoryReleased)
		return fut
	}
	if _, ok := addr.(*net.TCPAddr); !ok {
		fut := channel.NewFuture(nil)
		fut.Fail(fmt.Errorf("%w: %T", ErrNotTCPAddr, addr))
		return fut
	}

	return channel.Connect(ctx, func(ctx context.Context) (net.Conn, error) {
		c, err := f.dialer.DialContext(ctx, "tcp", addr.String())
		if err != nil {
			return nil, fmt.Errorf("连接失败: %w", err)
		}
		f.tune(c)
		logger.Debug("TCP 连接已建立", "remote", c.RemoteAddr().String())
		return c, nil
	}, init)
}

// Listen 在 addr 上监听入站连接，addr 形如 "0.0.0.0:9701"
func (f *Factory) Listen(addr string) (net.Listener, error) {
	if f.released.Load() {
		return nil, ErrFactoryReleased
	}
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("监听失败: %w", err)
	}
	return &listener{Listener: l, factory: f}, nil
}

// ReleaseExternalResources 释放工厂资源
//
// TCP 工厂不持有共享资源，释放后拒绝新的连接请求。
func (f *Factory) ReleaseExternalResources() error {
	f.released.Store(true)
	return nil
}

func (f *Factory) tune(c net.Conn) {
	tc, ok := c.(*net.TCPConn)
	if !ok {
		return
	}
	_ = tc.SetNoDelay(f.cfg.NoDelay)
	if f.cfg.KeepAlive {
		_ = tc.SetKeepAlive(true)
		_ = tc.SetKeepAlivePeriod(f.cfg.KeepAlivePeriod.Duration())
	}
}

// listener 对入站连接应用与出站相同的套接字选项
type listener struct {
	net.Listener
	factory *Factory
}

func (l *listener) Accept() (net.Conn, error) {
	c, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	l.factory.tune(c)
	return c, nil
}
