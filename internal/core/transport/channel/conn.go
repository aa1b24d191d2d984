package channel

import (
	"net"
	"sync"
	"sync/atomic"

	pkgif "github.com/dep2p/go-overlay/pkg/interfaces"
)

// 确保实现接口
var _ pkgif.Channel = (*Conn)(nil)

var nextID atomic.Uint64

// Conn 物理连接
type Conn struct {
	id   uint64
	conn net.Conn

	closeOnce sync.Once
	closeErr  error
	closeCh   chan struct{}
}

// NewConn 包装 net.Conn
func NewConn(c net.Conn) *Conn {
	return &Conn{
		id:      nextID.Add(1),
		conn:    c,
		closeCh: make(chan struct{}),
	}
}

// ID 连接标识
func (c *Conn) ID() uint64 { return c.id }

// Conn 底层字节流
func (c *Conn) Conn() net.Conn { return c.conn }

// LocalAddr 本地地址
func (c *Conn) LocalAddr() net.Addr { return c.conn.LocalAddr() }

// RemoteAddr 远端地址
func (c *Conn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

// Close 关闭连接
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
		close(c.closeCh)
	})
	return c.closeErr
}

// CloseFuture 关闭通知
func (c *Conn) CloseFuture() <-chan struct{} { return c.closeCh }

// IsOpen 是否仍然打开
func (c *Conn) IsOpen() bool {
	select {
	case <-c.closeCh:
		return false
	default:
		return true
	}
}
