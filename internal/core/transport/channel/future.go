package channel

import (
	"context"
	"net"
	"sync"

	pkgif "github.com/dep2p/go-overlay/pkg/interfaces"
)

// 确保实现接口
var _ pkgif.ConnectFuture = (*Future)(nil)

// DialFunc 协议相关的拨号函数
type DialFunc func(ctx context.Context) (net.Conn, error)

// Future 出站连接的异步结果
//
// 完成（成功/失败）与取消互斥，以先到者为准。
// 取消发生在成功之后时，已建立的连接会被关闭。
type Future struct {
	mu       sync.Mutex
	done     chan struct{}
	finished bool
	canceled bool
	err      error
	ch       pkgif.Channel
	stop     context.CancelFunc
}

// NewFuture 创建未完成的 Future
//
// stop 在取消时调用，用于中断正在进行的拨号，可以为 nil。
func NewFuture(stop context.CancelFunc) *Future {
	return &Future{
		done: make(chan struct{}),
		stop: stop,
	}
}

// Connect 在独立 goroutine 中执行 dial，成功后调用 init
//
// 返回的 Future 被取消时会中断 dial 的 ctx。
func Connect(ctx context.Context, dial DialFunc, init pkgif.ChannelInitializer) *Future {
	dialCtx, cancel := context.WithCancel(ctx)
	f := NewFuture(cancel)

	go func() {
		defer cancel()

		c, err := dial(dialCtx)
		if err != nil {
			f.Fail(err)
			return
		}
		ch := NewConn(c)
		if !f.Succeed(ch) {
			ch.Close()
			return
		}
		if init != nil {
			init(ch)
		}
	}()
	return f
}

// Succeed 标记成功，Future 已经完成或被取消时返回 false
func (f *Future) Succeed(ch pkgif.Channel) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finished {
		return false
	}
	f.finished = true
	f.ch = ch
	close(f.done)
	return true
}

// Fail 标记失败
func (f *Future) Fail(err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finished {
		return false
	}
	f.finished = true
	f.err = err
	close(f.done)
	return true
}

// Cancel 取消连接
func (f *Future) Cancel() {
	f.mu.Lock()
	if f.stop != nil {
		f.stop()
	}
	if f.finished {
		ch := f.ch
		f.mu.Unlock()
		if ch != nil {
			ch.Close()
		}
		return
	}
	f.finished = true
	f.canceled = true
	f.err = ErrCanceled
	close(f.done)
	f.mu.Unlock()
}

// Done 完成通知
func (f *Future) Done() <-chan struct{} { return f.done }

// IsSuccess 是否成功
func (f *Future) IsSuccess() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.finished && f.ch != nil
}

// IsCanceled 是否被取消
func (f *Future) IsCanceled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canceled
}

// Err 失败原因
func (f *Future) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Channel 成功时的连接
func (f *Future) Channel() pkgif.Channel {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ch
}
