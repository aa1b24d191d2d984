package endpoint

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	pkgif "github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/lib/log"
	"github.com/dep2p/go-overlay/pkg/types"
)

var logger = log.Logger("core/endpoint")

// 确保实现接口
var _ pkgif.EndpointService = (*Service)(nil)

// ============================================================================
//                              Service
// ============================================================================

// Service 端点服务
type Service struct {
	group      types.PeerGroupID
	transports *TransportRegistry

	readyEmitter pkgif.Emitter
	failEmitter  pkgif.Emitter

	mu         sync.RWMutex
	closed     bool
	listeners  map[string]pkgif.MessageListener // service/param -> listener
	messengers map[string]pkgif.Messenger       // 目的地址 -> 存活的消息器

	dropped atomic.Int64
}

// NewService 创建端点服务
func NewService(group types.PeerGroupID, bus pkgif.EventBus) (*Service, error) {
	if bus == nil {
		return nil, ErrNilEventBus
	}
	readyEm, err := bus.Emitter(new(types.EvtMessengerReady))
	if err != nil {
		return nil, fmt.Errorf("create messenger ready emitter: %w", err)
	}
	failEm, err := bus.Emitter(new(types.EvtSendFailed))
	if err != nil {
		readyEm.Close()
		return nil, fmt.Errorf("create send failed emitter: %w", err)
	}

	if group == "" {
		group = types.NetGroupID
	}
	return &Service{
		group:        group,
		transports:   NewTransportRegistry(),
		readyEmitter: readyEm,
		failEmitter:  failEm,
		listeners:    make(map[string]pkgif.MessageListener),
		messengers:   make(map[string]pkgif.Messenger),
	}, nil
}

// GroupID 所属组
func (s *Service) GroupID() types.PeerGroupID { return s.group }

// Transports 传输注册表
func (s *Service) Transports() *TransportRegistry { return s.transports }

// ============================================================================
//                              传输注册
// ============================================================================

// AddMessageTransport 注册消息传输
//
// 服务已关闭或同协议传输已存在时返回 nil。
func (s *Service) AddMessageTransport(t pkgif.MessageTransport) pkgif.MessengerEventListener {
	if s.isClosed() {
		logger.Warn("端点服务已关闭，拒绝注册传输", "protocol", t.ProtocolName())
		return nil
	}
	if err := s.transports.AddTransport(t); err != nil {
		logger.Warn("拒绝注册传输", "protocol", t.ProtocolName(), "err", err)
		return nil
	}
	return &transportListener{svc: s, transport: t}
}

// RemoveMessageTransport 注销消息传输
func (s *Service) RemoveMessageTransport(t pkgif.MessageTransport) bool {
	return s.transports.RemoveTransport(t)
}

// transportListener 传输专属的消息器事件监听器
type transportListener struct {
	svc       *Service
	transport pkgif.MessageTransport
}

// MessengerReady 记录新消息器并广播就绪事件
func (l *transportListener) MessengerReady(evt *types.EvtMessengerReady, m pkgif.Messenger) bool {
	if evt == nil || m == nil {
		return false
	}
	if l.svc.isClosed() {
		return false
	}
	if evt.Time.IsZero() {
		evt.Time = time.Now()
	}

	l.svc.track(m)
	if err := l.svc.readyEmitter.Emit(evt); err != nil {
		logger.Debug("广播消息器就绪事件失败", "err", err)
	}
	return true
}

// track 缓存消息器，消息器失效时移除
func (s *Service) track(m pkgif.Messenger) {
	keys := []string{
		m.DestinationAddress().Base().String(),
		m.LogicalDestinationAddress().Base().String(),
	}

	s.mu.Lock()
	for _, k := range keys {
		s.messengers[k] = m
	}
	s.mu.Unlock()

	go func() {
		<-m.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, k := range keys {
			if s.messengers[k] == m {
				delete(s.messengers, k)
			}
		}
	}()
}

// ============================================================================
//                              出站
// ============================================================================

// Messenger 获取到 dest 的消息器
//
// 优先复用存活的消息器，否则由协议匹配的传输新建。
func (s *Service) Messenger(ctx context.Context, dest types.EndpointAddress) (pkgif.Messenger, error) {
	if s.isClosed() {
		return nil, ErrServiceClosed
	}

	s.mu.RLock()
	m, ok := s.messengers[dest.Base().String()]
	s.mu.RUnlock()
	if ok && !m.IsClosed() {
		return m, nil
	}

	sender := s.transports.SenderFor(dest)
	if sender == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoTransport, dest)
	}
	return sender.GetMessenger(ctx, dest)
}

// ReportSendFailure 广播异步发送失败
func (s *Service) ReportSendFailure(dst types.EndpointAddress, msg *types.Message, err error) {
	logger.Debug("消息发送失败", "dest", dst.String(), "err", err)
	if emitErr := s.failEmitter.Emit(&types.EvtSendFailed{
		Destination: dst,
		Message:     msg,
		Err:         err,
		Time:        time.Now(),
	}); emitErr != nil {
		logger.Debug("广播发送失败事件失败", "err", emitErr)
	}
}

// ============================================================================
//                              入站
// ============================================================================

func listenerKey(service, param string) string {
	return service + "/" + param
}

// AddIncomingMessageListener 注册入站消息监听器
//
// param 为空的监听器接收该服务所有未被精确匹配的消息。已存在时返回 false。
func (s *Service) AddIncomingMessageListener(service, param string, l pkgif.MessageListener) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := listenerKey(service, param)
	if _, exists := s.listeners[key]; exists {
		return false
	}
	s.listeners[key] = l
	return true
}

// RemoveIncomingMessageListener 注销入站消息监听器
func (s *Service) RemoveIncomingMessageListener(service, param string) pkgif.MessageListener {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := listenerKey(service, param)
	l := s.listeners[key]
	delete(s.listeners, key)
	return l
}

// ProcessIncomingMessage 按目的地址分发入站消息
//
// 没有匹配的监听器时丢弃。
func (s *Service) ProcessIncomingMessage(msg *types.Message, src, dst types.EndpointAddress) {
	s.mu.RLock()
	l, ok := s.listeners[listenerKey(dst.ServiceName, dst.ServiceParam)]
	if !ok {
		l, ok = s.listeners[listenerKey(dst.ServiceName, "")]
	}
	s.mu.RUnlock()

	if !ok {
		s.dropped.Add(1)
		logger.Debug("丢弃无监听器的消息", "src", src.String(), "dst", dst.String())
		return
	}
	l.ProcessIncomingMessage(msg, src, dst)
}

// Dropped 因无监听器丢弃的消息数
func (s *Service) Dropped() int64 {
	return s.dropped.Load()
}

// ============================================================================
//                              生命周期
// ============================================================================

// Close 关闭端点服务
//
// 之后的注册与连接请求被拒绝；已建立的消息器由各自的传输负责关闭。
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.messengers = make(map[string]pkgif.Messenger)
	s.mu.Unlock()

	s.transports.Clear()
	s.readyEmitter.Close()
	s.failEmitter.Close()
	logger.Info("端点服务已关闭", "group", s.group.String())
	return nil
}

func (s *Service) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
