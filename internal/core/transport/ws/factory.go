package ws

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/internal/core/transport/channel"
	pkgif "github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/lib/log"
)

var logger = log.Logger("core/transport/ws")

// ============================================================================
//                              Factory 实现
// ============================================================================

// 确保实现接口
var _ pkgif.ChannelFactory = (*Factory)(nil)

// Factory WebSocket 连接工厂
type Factory struct {
	cfg    config.WebSocketConfig
	dialer *websocket.Dialer

	released atomic.Bool
}

// NewFactory 创建 WebSocket 连接工厂
func NewFactory(cfg config.WebSocketConfig) *Factory {
	return &Factory{
		cfg: cfg,
		dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.HandshakeTimeout.Duration(),
			ReadBufferSize:   cfg.ReadBufferSize,
			WriteBufferSize:  cfg.WriteBufferSize,
		},
	}
}

// Connect 异步完成 HTTP 升级并建立 WebSocket 连接
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

	u := url.URL{Scheme: "ws", Host: addr.String(), Path: f.cfg.Path}
	return channel.Connect(ctx, func(ctx context.Context) (net.Conn, error) {
		c, resp, err := f.dialer.DialContext(ctx, u.String(), nil)
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		if err != nil {
			return nil, fmt.Errorf("连接失败: %w", err)
		}
		logger.Debug("WebSocket 连接已建立", "url", u.String())
		return newConn(c), nil
	}, init)
}

// Listen 在 addr 上启动 HTTP 服务并接受升级请求
func (f *Factory) Listen(addr string) (net.Listener, error) {
	if f.released.Load() {
		return nil, ErrFactoryReleased
	}
	tl, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("监听失败: %w", err)
	}
	return newListener(tl, f.cfg), nil
}

// ReleaseExternalResources 释放工厂资源
func (f *Factory) ReleaseExternalResources() error {
	f.released.Store(true)
	return nil
}

// ============================================================================
//                              listener
// ============================================================================

type listener struct {
	tl     net.Listener
	server *http.Server
	conns  chan net.Conn
	closed chan struct{}

	closeOnce sync.Once
}

func newListener(tl net.Listener, cfg config.WebSocketConfig) *listener {
	l := &listener{
		tl:     tl,
		conns:  make(chan net.Conn, 16),
		closed: make(chan struct{}),
	}
	upgrader := websocket.Upgrader{
		HandshakeTimeout: cfg.HandshakeTimeout.Duration(),
		ReadBufferSize:   cfg.ReadBufferSize,
		WriteBufferSize:  cfg.WriteBufferSize,
		CheckOrigin:      func(*http.Request) bool { return true },
	}

	mux := http.NewServeMux()
	mux.HandleFunc(cfg.Path, func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Debug("WebSocket 升级失败", "remote", r.RemoteAddr, "err", err)
			return
		}
		select {
		case l.conns <- newConn(c):
		case <-l.closed:
			c.Close()
		}
	})
	l.server = &http.Server{Handler: mux, ReadHeaderTimeout: cfg.HandshakeTimeout.Duration()}

	go func() {
		if err := l.server.Serve(tl); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("WebSocket 服务退出", "err", err)
		}
	}()
	return l
}

// Accept 返回下一条已升级的连接
func (l *listener) Accept() (net.Conn, error) {
	select {
	case c := <-l.conns:
		return c, nil
	case <-l.closed:
		return nil, ErrListenerClosed
	}
}

// Close 停止 HTTP 服务
//
// 已升级的连接由 http.Server 视为被劫持，不受影响。
func (l *listener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.closed)
		err = l.server.Close()
	})
	return err
}

// Addr 监听地址
func (l *listener) Addr() net.Addr {
	return l.tl.Addr()
}
