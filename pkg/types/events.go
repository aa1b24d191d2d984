package types

import "time"

// 事件类型常量
const (
	EventTypeMessengerReady = "messenger.ready"
	EventTypeSendFailed     = "messenger.send_failed"
)

// Direction 连接方向
type Direction int

const (
	// DirOutbound 本地主动发起
	DirOutbound Direction = iota
	// DirInbound 远端发起
	DirInbound
)

// String 返回方向的字符串表示
func (d Direction) String() string {
	if d == DirInbound {
		return "inbound"
	}
	return "outbound"
}

// EvtMessengerReady 消息器就绪事件
//
// 传输层建立连接并完成握手后，通过 MessengerEventListener 通知端点服务。
type EvtMessengerReady struct {
	Protocol       string
	Direction      Direction
	LocalAddress   EndpointAddress
	RemoteAddress  EndpointAddress
	LogicalAddress EndpointAddress
	Time           time.Time
}

// EvtSendFailed 异步发送失败事件
//
// 消息器的 Send 不返回投递结果，失败通过端点服务的事件总线上报。
type EvtSendFailed struct {
	Destination EndpointAddress
	Message     *Message
	Err         error
	Time        time.Time
}
