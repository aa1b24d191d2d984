package endpoint

import (
	"sort"
	"sync"

	pkgif "github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/types"
)

// ============================================================================
//                              TransportRegistry 实现
// ============================================================================

// TransportRegistry 消息传输注册表
//
// 每个协议最多注册一个传输。
type TransportRegistry struct {
	mu         sync.RWMutex
	transports map[string]pkgif.MessageTransport // protocol -> transport
}

// NewTransportRegistry 创建新的传输注册表
func NewTransportRegistry() *TransportRegistry {
	return &TransportRegistry{
		transports: make(map[string]pkgif.MessageTransport),
	}
}

// AddTransport 添加传输到注册表
//
// 协议名为空或已存在同协议的传输时返回错误。
func (r *TransportRegistry) AddTransport(t pkgif.MessageTransport) error {
	proto := t.ProtocolName()
	if proto == "" {
		return ErrNoProtocol
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.transports[proto]; exists {
		return ErrTransportExists
	}
	r.transports[proto] = t
	logger.Info("注册传输", "protocol", proto, "publicAddr", t.PublicAddress().String())
	return nil
}

// RemoveTransport 移除传输，t 不是该协议当前注册的传输时返回 false
func (r *TransportRegistry) RemoveTransport(t pkgif.MessageTransport) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	proto := t.ProtocolName()
	if cur, ok := r.transports[proto]; !ok || cur != t {
		return false
	}
	delete(r.transports, proto)
	logger.Info("移除传输", "protocol", proto)
	return true
}

// SenderFor 返回可以连接 dest 的传输
//
// 按协议名精确匹配，且传输必须能主动建立连接。
func (r *TransportRegistry) SenderFor(dest types.EndpointAddress) pkgif.MessageSender {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.transports[dest.Protocol]
	if !ok {
		logger.Debug("无合适传输", "dest", dest.String())
		return nil
	}
	s, ok := t.(pkgif.MessageSender)
	if !ok {
		logger.Debug("传输不支持主动连接", "protocol", dest.Protocol)
		return nil
	}
	return s
}

// TransportForProtocol 获取指定协议的传输
func (r *TransportRegistry) TransportForProtocol(protocol string) pkgif.MessageTransport {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.transports[protocol]
}

// Protocols 返回所有已注册的协议，按名称排序
func (r *TransportRegistry) Protocols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	protocols := make([]string, 0, len(r.transports))
	for proto := range r.transports {
		protocols = append(protocols, proto)
	}
	sort.Strings(protocols)
	return protocols
}

// Clear 清空注册表
func (r *TransportRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transports = make(map[string]pkgif.MessageTransport)
}
