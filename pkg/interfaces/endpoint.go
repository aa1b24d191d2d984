package interfaces

import (
	"context"

	"github.com/dep2p/go-overlay/pkg/types"
)

// EndpointService 端点服务
//
// 消息传输在此注册，入站消息由此向上分发，异步发送失败由此上报。
type EndpointService interface {
	// GroupID 所属组
	GroupID() types.PeerGroupID

	// AddMessageTransport 注册消息传输
	//
	// 返回的监听器用于通知新消息器；返回 nil 表示拒绝注册。
	AddMessageTransport(t MessageTransport) MessengerEventListener

	// RemoveMessageTransport 注销消息传输
	RemoveMessageTransport(t MessageTransport) bool

	// ProcessIncomingMessage 分发入站消息
	ProcessIncomingMessage(msg *types.Message, src, dst types.EndpointAddress)

	// ReportSendFailure 上报异步发送失败
	ReportSendFailure(dst types.EndpointAddress, msg *types.Message, err error)
}

// MessageTransport 消息传输
type MessageTransport interface {
	// ProtocolName 协议名
	ProtocolName() string

	// PublicAddress 本传输对外公布的地址
	PublicAddress() types.EndpointAddress

	// EndpointService 当前注册的端点服务，未启动时为 nil
	EndpointService() EndpointService
}

// MessageSender 能够主动建立消息器的传输
type MessageSender interface {
	MessageTransport

	// GetMessenger 建立到 dest 的连接并返回消息器
	GetMessenger(ctx context.Context, dest types.EndpointAddress) (Messenger, error)

	// AllowsRouting 通过该传输建立的连接是否可被用于中转
	AllowsRouting() bool

	// IsConnectionOriented 是否面向连接
	IsConnectionOriented() bool
}

// MessengerEventListener 消息器事件监听器（端点服务提供给传输）
type MessengerEventListener interface {
	// MessengerReady 新消息器可用，返回 false 表示端点服务不接收
	MessengerReady(evt *types.EvtMessengerReady, m Messenger) bool
}

// MessageListener 入站消息监听器
type MessageListener interface {
	ProcessIncomingMessage(msg *types.Message, src, dst types.EndpointAddress)
}

// MessageListenerFunc 函数适配器
type MessageListenerFunc func(msg *types.Message, src, dst types.EndpointAddress)

// ProcessIncomingMessage 调用 f
func (f MessageListenerFunc) ProcessIncomingMessage(msg *types.Message, src, dst types.EndpointAddress) {
	f(msg, src, dst)
}
