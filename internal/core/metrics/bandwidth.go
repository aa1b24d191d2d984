package metrics

import (
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-overlay/pkg/types"
)

// Reporter 记录与查询消息器收发字节
type Reporter interface {
	// LogSentMessage 记录发往 peer 的一帧
	LogSentMessage(size int64, protocol string, peer types.EndpointAddress)

	// LogRecvMessage 记录来自 peer 的一帧
	LogRecvMessage(size int64, protocol string, peer types.EndpointAddress)

	// GetBandwidthTotals 获取总带宽统计
	GetBandwidthTotals() Stats

	// GetBandwidthForPeer 获取远端逻辑地址的带宽统计
	GetBandwidthForPeer(peer types.EndpointAddress) Stats

	// GetBandwidthForProtocol 获取协议带宽统计
	GetBandwidthForProtocol(protocol string) Stats

	// GetBandwidthByPeer 获取所有远端的带宽统计，键为逻辑地址字符串
	GetBandwidthByPeer() map[string]Stats

	// Reset 重置所有统计
	Reset()
}

// 确保实现接口
var _ Reporter = (*BandwidthCounter)(nil)

// meter 单一维度的收发统计
type meter struct {
	in, out         atomic.Int64
	inRate, outRate *RateMeter
}

func newMeter(clk clock.Clock) *meter {
	return &meter{inRate: NewRateMeter(clk), outRate: NewRateMeter(clk)}
}

func (m *meter) reset() {
	m.in.Store(0)
	m.out.Store(0)
	m.inRate.Reset()
	m.outRate.Reset()
}

func (m *meter) stats() Stats {
	return Stats{
		TotalIn:  m.in.Load(),
		TotalOut: m.out.Load(),
		RateIn:   m.inRate.Rate(),
		RateOut:  m.outRate.Rate(),
	}
}

// BandwidthCounter 带宽计数器
//
// 跟踪消息器收发的数据，并发安全。
type BandwidthCounter struct {
	clk clock.Clock

	total *meter

	mu         sync.RWMutex
	byProtocol map[string]*meter
	byPeer     map[string]*meter
}

// NewBandwidthCounter 创建新的 BandwidthCounter，clk 为 nil 时使用系统时钟
func NewBandwidthCounter(clk clock.Clock) *BandwidthCounter {
	if clk == nil {
		clk = clock.New()
	}
	return &BandwidthCounter{
		clk:        clk,
		total:      newMeter(clk),
		byProtocol: make(map[string]*meter),
		byPeer:     make(map[string]*meter),
	}
}

// LogSentMessage 记录出站帧
func (b *BandwidthCounter) LogSentMessage(size int64, protocol string, peer types.EndpointAddress) {
	for _, m := range []*meter{b.total, b.get(b.byProtocol, protocol), b.get(b.byPeer, peer.String())} {
		m.out.Add(size)
		m.outRate.Add(size)
	}
}

// LogRecvMessage 记录入站帧
func (b *BandwidthCounter) LogRecvMessage(size int64, protocol string, peer types.EndpointAddress) {
	for _, m := range []*meter{b.total, b.get(b.byProtocol, protocol), b.get(b.byPeer, peer.String())} {
		m.in.Add(size)
		m.inRate.Add(size)
	}
}

// GetBandwidthTotals 获取总带宽统计
func (b *BandwidthCounter) GetBandwidthTotals() Stats {
	return b.total.stats()
}

// GetBandwidthForPeer 获取远端带宽统计
func (b *BandwidthCounter) GetBandwidthForPeer(peer types.EndpointAddress) Stats {
	return b.lookup(b.byPeer, peer.String())
}

// GetBandwidthForProtocol 获取协议带宽统计
func (b *BandwidthCounter) GetBandwidthForProtocol(protocol string) Stats {
	return b.lookup(b.byProtocol, protocol)
}

// GetBandwidthByPeer 获取所有远端的带宽统计
func (b *BandwidthCounter) GetBandwidthByPeer() map[string]Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[string]Stats, len(b.byPeer))
	for k, m := range b.byPeer {
		out[k] = m.stats()
	}
	return out
}

// Reset 重置所有统计
func (b *BandwidthCounter) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.total.reset()
	clear(b.byProtocol)
	clear(b.byPeer)
}

func (b *BandwidthCounter) get(set map[string]*meter, key string) *meter {
	b.mu.RLock()
	m, ok := set[key]
	b.mu.RUnlock()
	if ok {
		return m
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if m, ok = set[key]; !ok {
		m = newMeter(b.clk)
		set[key] = m
	}
	return m
}

func (b *BandwidthCounter) lookup(set map[string]*meter, key string) Stats {
	b.mu.RLock()
	m, ok := set[key]
	b.mu.RUnlock()
	if !ok {
		return Stats{}
	}
	return m.stats()
}
