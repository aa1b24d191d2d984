package client

import "errors"

// 生命周期错误
var (
	// ErrNotStarted 客户端未处于 Started 状态
	ErrNotStarted = errors.New("transport client not started")

	// ErrNotStopping 客户端未处于 Stopping 状态
	ErrNotStopping = errors.New("transport client not stopping")

	// ErrAlreadyStarted 重复启动
	ErrAlreadyStarted = errors.New("transport client already started")

	// ErrRegistrationRefused 端点服务拒绝注册
	ErrRegistrationRefused = errors.New("endpoint service refused registration")
)

// 连接建立错误
var (
	// ErrResolve 地址无法解析为套接字地址
	ErrResolve = errors.New("cannot resolve destination")

	// ErrConnectTimeout 物理连接超时
	ErrConnectTimeout = errors.New("connect timeout")

	// ErrConnectFailed 物理连接失败
	ErrConnectFailed = errors.New("connect failed")

	// ErrHandshakeTimeout 握手超时
	ErrHandshakeTimeout = errors.New("handshake timeout")

	// ErrInterrupted 等待被 ctx 中断
	ErrInterrupted = errors.New("connect interrupted")

	// ErrClientStopping 连接建立期间客户端开始关闭
	ErrClientStopping = errors.New("transport client stopping")

	// ErrPingUnsupported Ping 已废弃
	ErrPingUnsupported = errors.New("ping is not supported")
)

// 消息器错误
var (
	// ErrNotConnected 底层连接已关闭
	ErrNotConnected = errors.New("messenger not connected")

	// ErrSendQueueFull 发送队列已满
	ErrSendQueueFull = errors.New("send queue full")
)

// 参数错误
var (
	// ErrNilFactory 未提供连接工厂
	ErrNilFactory = errors.New("channel factory is nil")

	// ErrNilTranslator 未提供地址转换器
	ErrNilTranslator = errors.New("address translator is nil")
)
