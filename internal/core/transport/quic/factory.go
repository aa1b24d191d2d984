package quic

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"

	"github.com/quic-go/quic-go"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/internal/core/transport/channel"
	pkgif "github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/lib/log"
)

var logger = log.Logger("core/transport/quic")

// ============================================================================
//                              Factory 实现
// ============================================================================

// 确保实现接口
var _ pkgif.ChannelFactory = (*Factory)(nil)

// Factory QUIC 连接工厂
//
// 拨号与监听共享同一个 UDP socket。未监听时，首次拨号创建随机端口的 socket。
type Factory struct {
	mu sync.Mutex

	tlsConf *tls.Config
	conf    *quic.Config

	udpConn   *net.UDPConn
	transport *quic.Transport
	released  bool
}

// NewFactory 创建 QUIC 连接工厂
func NewFactory(cfg config.QUICConfig) (*Factory, error) {
	tlsConf, err := GenerateTLSConfig(cfg.ALPN)
	if err != nil {
		return nil, err
	}
	return &Factory{
		tlsConf: tlsConf,
		conf: &quic.Config{
			MaxIdleTimeout:  cfg.MaxIdleTimeout.Duration(),
			KeepAlivePeriod: cfg.KeepAlivePeriod.Duration(),
		},
	}, nil
}

// Connect 异步建立 QUIC 连接并打开一个双向流
func (f *Factory) Connect(ctx context.Context, addr net.Addr, init pkgif.ChannelInitializer) pkgif.ConnectFuture {
	udpAddr, ok := addr.(*net.UDPAddr)
	if !ok {
		fut := channel.NewFuture(nil)
		fut.Fail(fmt.Errorf("%w: %T", ErrNotUDPAddr, addr))
		return fut
	}
	tr, err := f.sharedTransport(nil)
	if err != nil {
		fut := channel.NewFuture(nil)
		fut.Fail(err)
		return fut
	}

	return channel.Connect(ctx, func(ctx context.Context) (net.Conn, error) {
		qc, err := tr.Dial(ctx, udpAddr, f.tlsConf, f.conf)
		if err != nil {
			return nil, fmt.Errorf("dial: %w", err)
		}
		st, err := qc.OpenStreamSync(ctx)
		if err != nil {
			_ = qc.CloseWithError(0, "")
			return nil, fmt.Errorf("open stream: %w", err)
		}
		logger.Debug("QUIC 连接已建立", "remote", qc.RemoteAddr().String())
		return newStreamConn(qc, st), nil
	}, init)
}

// Listen 在 addr 上监听，之后的拨号复用同一个 UDP socket
//
// 工厂已经因拨号创建过 socket 时，直接在该 socket 上监听，addr 被忽略。
func (f *Factory) Listen(addr string) (net.Listener, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	tr, err := f.sharedTransport(udpAddr)
	if err != nil {
		return nil, err
	}
	ql, err := tr.Listen(f.tlsConf, f.conf)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}
	return newListener(ql), nil
}

// ReleaseExternalResources 关闭共享的 quic.Transport 与 UDP socket
func (f *Factory) ReleaseExternalResources() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.released {
		return nil
	}
	f.released = true

	if f.transport == nil {
		return nil
	}
	err := f.transport.Close()
	if cerr := f.udpConn.Close(); err == nil {
		err = cerr
	}
	f.transport = nil
	f.udpConn = nil
	return err
}

func (f *Factory) sharedTransport(laddr *net.UDPAddr) (*quic.Transport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.released {
		return nil, ErrFactoryReleased
	}
	if f.transport != nil {
		return f.transport, nil
	}
	if laddr == nil {
		laddr = &net.UDPAddr{Port: 0}
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("listen udp: %w", err)
	}
	f.udpConn = conn
	f.transport = &quic.Transport{Conn: conn}
	return f.transport, nil
}
