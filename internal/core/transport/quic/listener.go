package quic

import (
	"context"
	"net"
	"sync"

	"github.com/quic-go/quic-go"
)

// listener 接受 QUIC 连接，并把每条连接上的第一个流作为 net.Conn 交付
type listener struct {
	ql *quic.Listener

	ctx    context.Context
	cancel context.CancelFunc
	conns  chan net.Conn

	closeOnce sync.Once
}

func newListener(ql *quic.Listener) *listener {
	ctx, cancel := context.WithCancel(context.Background())
	l := &listener{
		ql:     ql,
		ctx:    ctx,
		cancel: cancel,
		conns:  make(chan net.Conn, 16),
	}
	go l.acceptLoop()
	return l
}

func (l *listener) acceptLoop() {
	for {
		qc, err := l.ql.Accept(l.ctx)
		if err != nil {
			return
		}
		go l.acceptStream(qc)
	}
}

func (l *listener) acceptStream(qc quic.Connection) {
	st, err := qc.AcceptStream(l.ctx)
	if err != nil {
		logger.Debug("等待入站流失败", "remote", qc.RemoteAddr().String(), "err", err)
		_ = qc.CloseWithError(0, "")
		return
	}
	select {
	case l.conns <- newStreamConn(qc, st):
	case <-l.ctx.Done():
		_ = qc.CloseWithError(0, "")
	}
}

// Accept 返回下一条入站连接
func (l *listener) Accept() (net.Conn, error) {
	select {
	case c := <-l.conns:
		return c, nil
	case <-l.ctx.Done():
		return nil, ErrListenerClosed
	}
}

// Close 停止接受连接，已交付的连接不受影响
func (l *listener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		l.cancel()
		err = l.ql.Close()
	})
	return err
}

// Addr 监听地址
func (l *listener) Addr() net.Addr {
	return l.ql.Addr()
}
