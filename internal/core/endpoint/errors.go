package endpoint

import "errors"

var (
	// ErrServiceClosed 端点服务已关闭
	ErrServiceClosed = errors.New("endpoint service closed")

	// ErrNoTransport 没有可连接目标地址的传输
	ErrNoTransport = errors.New("no suitable transport for address")

	// ErrTransportExists 同协议的传输已注册
	ErrTransportExists = errors.New("transport already registered for protocol")

	// ErrNoProtocol 传输未声明协议名
	ErrNoProtocol = errors.New("transport has no protocol name")

	// ErrNilEventBus 未提供事件总线
	ErrNilEventBus = errors.New("event bus is nil")
)
