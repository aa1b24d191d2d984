package mocks

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-overlay/internal/core/transport/channel"
	"github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/types"
)

// ============================================================================
//                              MockChannelFactory
// ============================================================================

// ConnectCall 一次 Connect 调用记录
type ConnectCall struct {
	Addr   net.Addr
	Future interfaces.ConnectFuture
}

// MockChannelFactory 模拟 ChannelFactory 接口实现
//
// 未设置 ConnectFunc 时返回一个永不完成的 Future。
type MockChannelFactory struct {
	mu sync.Mutex

	// 可覆盖的方法
	ConnectFunc func(ctx context.Context, addr net.Addr, init interfaces.ChannelInitializer) interfaces.ConnectFuture
	ReleaseFunc func() error

	// 调用记录
	ConnectCalls []ConnectCall
	ReleaseCalls atomic.Int32
}

// Connect 发起连接
func (m *MockChannelFactory) Connect(ctx context.Context, addr net.Addr, init interfaces.ChannelInitializer) interfaces.ConnectFuture {
	var fut interfaces.ConnectFuture
	if m.ConnectFunc != nil {
		fut = m.ConnectFunc(ctx, addr, init)
	} else {
		fut = channel.NewFuture(nil)
	}

	m.mu.Lock()
	m.ConnectCalls = append(m.ConnectCalls, ConnectCall{Addr: addr, Future: fut})
	m.mu.Unlock()
	return fut
}

// ReleaseExternalResources 释放资源
func (m *MockChannelFactory) ReleaseExternalResources() error {
	m.ReleaseCalls.Add(1)
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc()
	}
	return nil
}

// Calls 返回 Connect 调用记录的副本
func (m *MockChannelFactory) Calls() []ConnectCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ConnectCall(nil), m.ConnectCalls...)
}

// ============================================================================
//                              MockTranslator
// ============================================================================

// ErrUnresolvable MockTranslator 默认的解析错误
var ErrUnresolvable = errors.New("mock: unresolvable address")

// MockTranslator 模拟 AddressTranslator 接口实现
//
// 默认把端点地址的 Address 部分解析为 TCP 地址。
type MockTranslator struct {
	Protocol string

	// 可覆盖的方法
	ToSocketAddressFunc func(addr types.EndpointAddress) (net.Addr, error)
}

// ToSocketAddress 解析端点地址
func (m *MockTranslator) ToSocketAddress(addr types.EndpointAddress) (net.Addr, error) {
	if m.ToSocketAddressFunc != nil {
		return m.ToSocketAddressFunc(addr)
	}
	a, err := net.ResolveTCPAddr("tcp", addr.Address)
	if err != nil {
		return nil, ErrUnresolvable
	}
	return a, nil
}

// ToEndpointAddress 还原端点地址
func (m *MockTranslator) ToEndpointAddress(addr net.Addr) types.EndpointAddress {
	return types.EndpointAddress{Protocol: m.ProtocolName(), Address: addr.String()}
}

// ProtocolName 协议名，默认 "mock"
func (m *MockTranslator) ProtocolName() string {
	if m.Protocol == "" {
		return "mock"
	}
	return m.Protocol
}
