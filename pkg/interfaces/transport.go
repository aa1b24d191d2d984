package interfaces

import (
	"context"
	"net"

	"github.com/dep2p/go-overlay/pkg/types"
)

// AddressTranslator 逻辑地址与物理套接字地址的互相转换
//
// 无状态，由组合根为每种协议提供，本核心从不自行构造。
type AddressTranslator interface {
	// ToSocketAddress 将端点地址解析为可拨号的套接字地址
	ToSocketAddress(addr types.EndpointAddress) (net.Addr, error)

	// ToEndpointAddress 将套接字地址还原为端点地址
	ToEndpointAddress(addr net.Addr) types.EndpointAddress

	// ProtocolName 返回协议名，例如 "tcp"
	ProtocolName() string
}

// Channel 一条物理连接
//
// 包装 net.Conn，并提供关闭通知。
type Channel interface {
	// ID 连接标识（进程内唯一）
	ID() uint64

	// Conn 返回底层字节流
	Conn() net.Conn

	// LocalAddr 本地套接字地址
	LocalAddr() net.Addr

	// RemoteAddr 远端套接字地址
	RemoteAddr() net.Addr

	// Close 关闭连接，重复调用安全
	Close() error

	// CloseFuture 连接关闭时 Done 的句柄
	CloseFuture() <-chan struct{}

	// IsOpen 连接是否仍然打开
	IsOpen() bool
}

// ChannelInitializer 连接建立后在 I/O goroutine 中调用
//
// 用于安装每条连接的处理流程（如握手）。
type ChannelInitializer func(ch Channel)

// ConnectFuture 出站连接的异步结果
type ConnectFuture interface {
	// Done 连接成功、失败或被取消时关闭
	Done() <-chan struct{}

	// Cancel 取消尚未完成的连接；已经成功的连接会被关闭
	Cancel()

	// IsSuccess 是否连接成功
	IsSuccess() bool

	// Err 失败原因，成功或未完成时为 nil
	Err() error

	// Channel 成功时返回连接，否则为 nil
	Channel() Channel
}

// ChannelFactory 连接工厂
//
// 负责打开出站物理连接，持有工厂级资源（共享 socket、goroutine 等）。
type ChannelFactory interface {
	// Connect 异步连接到 addr，成功后在 I/O goroutine 中调用 init
	Connect(ctx context.Context, addr net.Addr, init ChannelInitializer) ConnectFuture

	// ReleaseExternalResources 释放工厂级资源，只应调用一次
	ReleaseExternalResources() error
}

// GroupFuture 批量关闭的异步结果
type GroupFuture interface {
	// Done 所有连接关闭后关闭
	Done() <-chan struct{}

	// Await 等待完成或 ctx 结束
	Await(ctx context.Context) error

	// Err 聚合后的关闭错误
	Err() error
}
