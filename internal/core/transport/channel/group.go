package channel

import (
	"context"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	pkgif "github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/lib/log"
)

var logger = log.Logger("core/transport/channel")

// ============================================================================
//                              Group - 连接池
// ============================================================================

// Group 连接池
//
// 记录所有已建立的连接，连接关闭时自动移除。
// CloseAll 之后不再接受新连接。
type Group struct {
	name string

	mu      sync.Mutex
	members map[uint64]pkgif.Channel
	closing bool
	future  *GroupFuture
}

// NewGroup 创建连接池
func NewGroup(name string) *Group {
	return &Group{
		name:    name,
		members: make(map[uint64]pkgif.Channel),
	}
}

// Add 加入连接
//
// 连接池已开始关闭时返回 false，调用方负责关闭该连接。
func (g *Group) Add(ch pkgif.Channel) bool {
	g.mu.Lock()
	if g.closing {
		g.mu.Unlock()
		return false
	}
	g.members[ch.ID()] = ch
	g.mu.Unlock()

	go func() {
		<-ch.CloseFuture()
		g.remove(ch)
	}()
	return true
}

// Len 当前连接数
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.members)
}

// Contains 是否包含指定连接
func (g *Group) Contains(ch pkgif.Channel) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.members[ch.ID()]
	return ok
}

// IsClosing 是否已开始关闭
func (g *Group) IsClosing() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closing
}

// CloseAll 并行关闭所有连接
//
// 重复调用返回同一个 GroupFuture。
func (g *Group) CloseAll() *GroupFuture {
	g.mu.Lock()
	if g.closing {
		f := g.future
		g.mu.Unlock()
		return f
	}
	g.closing = true
	members := make([]pkgif.Channel, 0, len(g.members))
	for _, ch := range g.members {
		members = append(members, ch)
	}
	f := &GroupFuture{done: make(chan struct{})}
	g.future = f
	g.mu.Unlock()

	logger.Debug("关闭连接池", "group", g.name, "count", len(members))

	go func() {
		var (
			eg    errgroup.Group
			errMu sync.Mutex
			errs  error
		)
		for _, ch := range members {
			ch := ch
			eg.Go(func() error {
				if err := ch.Close(); err != nil {
					errMu.Lock()
					errs = multierr.Append(errs, err)
					errMu.Unlock()
				}
				return nil
			})
		}
		_ = eg.Wait()
		f.finish(errs)
	}()
	return f
}

func (g *Group) remove(ch pkgif.Channel) {
	g.mu.Lock()
	delete(g.members, ch.ID())
	g.mu.Unlock()
}

// ============================================================================
//                              GroupFuture
// ============================================================================

// 确保实现接口
var _ pkgif.GroupFuture = (*GroupFuture)(nil)

// GroupFuture 批量关闭结果
type GroupFuture struct {
	done chan struct{}
	err  error
}

func (f *GroupFuture) finish(err error) {
	f.err = err
	close(f.done)
}

// Done 全部关闭后关闭
func (f *GroupFuture) Done() <-chan struct{} { return f.done }

// Await 等待完成或 ctx 结束
func (f *GroupFuture) Await(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err 聚合的关闭错误，未完成时为 nil
func (f *GroupFuture) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}
