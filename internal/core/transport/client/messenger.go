package client

import (
	"bufio"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/internal/core/metrics"
	"github.com/dep2p/go-overlay/internal/core/transport/wire"
	pkgif "github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/types"
)

// ============================================================================
//                              AsyncMessenger
// ============================================================================

// 确保实现接口
var _ pkgif.Messenger = (*AsyncMessenger)(nil)

// MessengerParams 消息器参数
type MessengerParams struct {
	// Protocol 所属传输协议名
	Protocol string

	// GroupID 本地所属组
	GroupID types.PeerGroupID

	// LocalPeer 本地节点 ID
	LocalPeer types.PeerID

	// LocalAddress 本地返回地址
	LocalAddress types.EndpointAddress

	// Destination 连接指向的端点地址
	Destination types.EndpointAddress

	// Logical 握手获得的远端逻辑地址
	Logical types.EndpointAddress

	// Service 入站消息的上交对象，也接收异步发送失败
	Service pkgif.EndpointService

	// Config 队列与帧参数
	Config config.MessengerConfig

	// Bandwidth 收发字节统计，可以为 nil
	Bandwidth metrics.Reporter
}

type outbound struct {
	msg *types.Message
	dst types.EndpointAddress
}

// AsyncMessenger 绑定一条已完成握手连接的异步消息器
//
// Send 只入队；写 goroutine 负责编码与写出，失败通过端点服务上报。
// 读 goroutine 把入站帧解码后交给端点服务。连接关闭后 Send 返回 ErrNotConnected。
type AsyncMessenger struct {
	p     MessengerParams
	ch    pkgif.Channel
	codec wire.Codec

	queue chan outbound

	// sendMu 保护 drained：写 goroutine 退出时持写锁排空队列，
	// Send 持读锁入队，保证入队的消息要么被写出要么被上报失败
	sendMu  sync.RWMutex
	drained bool
}

// NewMessenger 在已完成握手的连接上创建消息器并启动收发 goroutine
func NewMessenger(ch pkgif.Channel, p MessengerParams) *AsyncMessenger {
	p.Config = p.Config.WithDefaults()
	m := &AsyncMessenger{
		p:  p,
		ch: ch,
		codec: wire.Codec{
			CompressThreshold: p.Config.CompressThreshold,
			MaxMessageSize:    p.Config.MaxMessageSize,
		},
		queue: make(chan outbound, p.Config.SendQueueSize),
	}
	go m.writeLoop()
	go m.readLoop()
	return m
}

// Send 将消息入队，发往远端逻辑地址上的 service/param
func (m *AsyncMessenger) Send(msg *types.Message, service, param string) error {
	m.sendMu.RLock()
	defer m.sendMu.RUnlock()

	if m.drained || !m.ch.IsOpen() {
		return ErrNotConnected
	}
	select {
	case m.queue <- outbound{msg: msg, dst: m.p.Logical.WithService(service, param)}:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// LocalAddress 本地返回地址
func (m *AsyncMessenger) LocalAddress() types.EndpointAddress { return m.p.LocalAddress }

// DestinationAddress 连接指向的端点地址
func (m *AsyncMessenger) DestinationAddress() types.EndpointAddress { return m.p.Destination }

// LogicalDestinationAddress 远端逻辑地址
func (m *AsyncMessenger) LogicalDestinationAddress() types.EndpointAddress { return m.p.Logical }

// RemoteSocketAddress 远端套接字地址
func (m *AsyncMessenger) RemoteSocketAddress() net.Addr { return m.ch.RemoteAddr() }

// IsConnectionOriented 始终为 true
func (m *AsyncMessenger) IsConnectionOriented() bool { return true }

// IsClosed 底层连接是否已关闭
func (m *AsyncMessenger) IsClosed() bool { return !m.ch.IsOpen() }

// Done 底层连接关闭时关闭
func (m *AsyncMessenger) Done() <-chan struct{} { return m.ch.CloseFuture() }

// Close 关闭底层连接，队列中未写出的消息上报为发送失败
func (m *AsyncMessenger) Close() error {
	return m.ch.Close()
}

// Channel 底层连接
func (m *AsyncMessenger) Channel() pkgif.Channel { return m.ch }

func (m *AsyncMessenger) writeLoop() {
	defer m.drain()

	conn := m.ch.Conn()
	writeTimeout := m.p.Config.WriteTimeout.Duration()
	for {
		select {
		case <-m.ch.CloseFuture():
			return
		case out := <-m.queue:
			payload := m.codec.Encode(out.msg, m.p.LocalAddress, out.dst)
			if limit := m.p.Config.MaxMessageSize; limit > 0 && len(payload) > limit {
				m.reportFailure(out, fmt.Errorf("%w: %d > %d", wire.ErrFrameTooLarge, len(payload), limit))
				continue
			}
			if writeTimeout > 0 {
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			}
			if err := wire.WriteFrame(conn, payload); err != nil {
				m.reportFailure(out, err)
				logger.Debug("写出失败，关闭消息器", "logical", m.p.Logical.String(), "err", err)
				m.ch.Close()
				return
			}
			if m.p.Bandwidth != nil {
				m.p.Bandwidth.LogSentMessage(int64(len(payload)), m.p.Protocol, m.p.Logical)
			}
		}
	}
}

// drain 写 goroutine 退出后，把队列中剩余的消息上报为发送失败
func (m *AsyncMessenger) drain() {
	m.sendMu.Lock()
	m.drained = true
	m.sendMu.Unlock()

	for {
		select {
		case out := <-m.queue:
			m.reportFailure(out, ErrNotConnected)
		default:
			return
		}
	}
}

func (m *AsyncMessenger) reportFailure(out outbound, err error) {
	if m.p.Service != nil {
		m.p.Service.ReportSendFailure(out.dst, out.msg, err)
	}
}

func (m *AsyncMessenger) readLoop() {
	defer m.ch.Close()

	r := bufio.NewReader(m.ch.Conn())
	limit := m.p.Config.MaxMessageSize
	for {
		payload, err := wire.ReadFrame(r, limit)
		if err != nil {
			if m.ch.IsOpen() {
				logger.Debug("连接读取结束", "logical", m.p.Logical.String(), "err", err)
			}
			return
		}
		if m.p.Bandwidth != nil {
			m.p.Bandwidth.LogRecvMessage(int64(len(payload)), m.p.Protocol, m.p.Logical)
		}

		msg, err := m.codec.Decode(payload)
		if err != nil {
			logger.Debug("丢弃无法解析的消息帧", "logical", m.p.Logical.String(), "err", err)
			continue
		}
		if m.p.Service == nil {
			continue
		}
		dst := m.p.LocalAddress.WithService(msg.Destination.ServiceName, msg.Destination.ServiceParam)
		m.p.Service.ProcessIncomingMessage(msg, m.p.Logical, dst)
	}
}
