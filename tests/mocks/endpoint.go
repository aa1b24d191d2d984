package mocks

import (
	"sync"

	"github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/types"
)

// ============================================================================
//                              MockEndpointService
// ============================================================================

// IncomingCall 一次入站消息记录
type IncomingCall struct {
	Msg *types.Message
	Src types.EndpointAddress
	Dst types.EndpointAddress
}

// SendFailure 一次发送失败记录
type SendFailure struct {
	Dst types.EndpointAddress
	Msg *types.Message
	Err error
}

// MockEndpointService 模拟 EndpointService 接口实现
//
// 默认接受注册并返回 Listener。Incoming 与 Failures 为带缓冲的通道，
// 测试可以直接从中读取。
type MockEndpointService struct {
	mu sync.Mutex

	Group    types.PeerGroupID
	Listener *MockMessengerListener

	// 可覆盖的方法
	AddMessageTransportFunc func(t interfaces.MessageTransport) interfaces.MessengerEventListener

	// 调用记录
	Added    []interfaces.MessageTransport
	Removed  []interfaces.MessageTransport
	Incoming chan IncomingCall
	Failures chan SendFailure
}

// NewMockEndpointService 创建带有默认值的 MockEndpointService
func NewMockEndpointService() *MockEndpointService {
	return &MockEndpointService{
		Group:    types.NetGroupID,
		Listener: NewMockMessengerListener(),
		Incoming: make(chan IncomingCall, 64),
		Failures: make(chan SendFailure, 64),
	}
}

// GroupID 所属组
func (m *MockEndpointService) GroupID() types.PeerGroupID { return m.Group }

// AddMessageTransport 注册传输
func (m *MockEndpointService) AddMessageTransport(t interfaces.MessageTransport) interfaces.MessengerEventListener {
	m.mu.Lock()
	m.Added = append(m.Added, t)
	m.mu.Unlock()

	if m.AddMessageTransportFunc != nil {
		return m.AddMessageTransportFunc(t)
	}
	return m.Listener
}

// RemoveMessageTransport 注销传输
func (m *MockEndpointService) RemoveMessageTransport(t interfaces.MessageTransport) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Removed = append(m.Removed, t)
	return true
}

// ProcessIncomingMessage 记录入站消息
func (m *MockEndpointService) ProcessIncomingMessage(msg *types.Message, src, dst types.EndpointAddress) {
	m.Incoming <- IncomingCall{Msg: msg, Src: src, Dst: dst}
}

// ReportSendFailure 记录发送失败
func (m *MockEndpointService) ReportSendFailure(dst types.EndpointAddress, msg *types.Message, err error) {
	m.Failures <- SendFailure{Dst: dst, Msg: msg, Err: err}
}

// AddedCount 注册次数
func (m *MockEndpointService) AddedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Added)
}

// RemovedCount 注销次数
func (m *MockEndpointService) RemovedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Removed)
}

// ============================================================================
//                              MockMessengerListener
// ============================================================================

// ReadyCall 一次 MessengerReady 调用记录
type ReadyCall struct {
	Event     *types.EvtMessengerReady
	Messenger interfaces.Messenger
}

// MockMessengerListener 模拟 MessengerEventListener 接口实现
type MockMessengerListener struct {
	// 可覆盖的方法
	MessengerReadyFunc func(evt *types.EvtMessengerReady, m interfaces.Messenger) bool

	// 调用记录
	Ready chan ReadyCall
}

// NewMockMessengerListener 创建 MockMessengerListener
func NewMockMessengerListener() *MockMessengerListener {
	return &MockMessengerListener{Ready: make(chan ReadyCall, 64)}
}

// MessengerReady 记录新消息器
func (m *MockMessengerListener) MessengerReady(evt *types.EvtMessengerReady, msgr interfaces.Messenger) bool {
	m.Ready <- ReadyCall{Event: evt, Messenger: msgr}
	if m.MessengerReadyFunc != nil {
		return m.MessengerReadyFunc(evt, msgr)
	}
	return true
}
