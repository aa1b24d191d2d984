package interfaces

import (
	"net"

	"github.com/dep2p/go-overlay/pkg/types"
)

// Messenger 异步消息器
//
// 绑定一条已完成握手的物理连接。Send 只负责入队，不等待 I/O 完成；
// 投递失败通过所属端点服务的 ReportSendFailure 上报。
// 底层连接关闭后（本地或远端），Send 返回 ErrNotConnected 类错误。
type Messenger interface {
	// Send 将消息发往远端的 service/param，入队成功返回 nil
	Send(msg *types.Message, service, param string) error

	// LocalAddress 本地返回地址
	LocalAddress() types.EndpointAddress

	// DestinationAddress 连接时指向的远端端点地址（物理端点形式）
	DestinationAddress() types.EndpointAddress

	// LogicalDestinationAddress 握手获得的远端逻辑地址
	LogicalDestinationAddress() types.EndpointAddress

	// RemoteSocketAddress 远端套接字地址
	RemoteSocketAddress() net.Addr

	// IsConnectionOriented 是否面向连接
	IsConnectionOriented() bool

	// IsClosed 是否已关闭
	IsClosed() bool

	// Done 消息器失效时关闭
	Done() <-chan struct{}

	// Close 关闭消息器及底层连接
	Close() error
}
