package quic

import (
	"net"
	"time"

	"github.com/quic-go/quic-go"
)

// 确保实现接口
var _ net.Conn = (*streamConn)(nil)

// streamConn 将 QUIC 连接上的单个双向流适配为 net.Conn
type streamConn struct {
	conn   quic.Connection
	stream quic.Stream
}

func newStreamConn(conn quic.Connection, stream quic.Stream) *streamConn {
	return &streamConn{conn: conn, stream: stream}
}

func (c *streamConn) Read(p []byte) (int, error) {
	return c.stream.Read(p)
}

func (c *streamConn) Write(p []byte) (int, error) {
	return c.stream.Write(p)
}

// Close 关闭流及其所属的 QUIC 连接
func (c *streamConn) Close() error {
	c.stream.CancelRead(0)
	_ = c.stream.Close()
	return c.conn.CloseWithError(0, "")
}

func (c *streamConn) LocalAddr() net.Addr  { return c.conn.LocalAddr() }
func (c *streamConn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

func (c *streamConn) SetDeadline(t time.Time) error      { return c.stream.SetDeadline(t) }
func (c *streamConn) SetReadDeadline(t time.Time) error  { return c.stream.SetReadDeadline(t) }
func (c *streamConn) SetWriteDeadline(t time.Time) error { return c.stream.SetWriteDeadline(t) }
