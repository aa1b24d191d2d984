package handshake

import (
	"net"
	"sync"

	tec "github.com/jbenet/go-temp-err-catcher"

	"github.com/dep2p/go-overlay/internal/core/transport/channel"
	"github.com/dep2p/go-overlay/internal/core/transport/wire"
	pkgif "github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/types"
)

// ============================================================================
//                              Responder - 入站握手
// ============================================================================

// EstablishedFunc 入站握手完成回调
type EstablishedFunc func(ch pkgif.Channel, remote *wire.Welcome)

// Responder 入站握手应答方
type Responder struct {
	cfg    Config
	onConn EstablishedFunc

	wg sync.WaitGroup
}

// NewResponder 创建应答方，onConn 为 nil 时握手完成后直接关闭连接
func NewResponder(cfg Config, onConn EstablishedFunc) *Responder {
	return &Responder{cfg: cfg, onConn: onConn}
}

// Serve 在 l 上接受连接直到 l 关闭
//
// 临时性错误（如文件描述符耗尽）退避后重试，其余错误结束循环并返回。
func (r *Responder) Serve(l net.Listener) error {
	var catcher tec.TempErrCatcher
	for {
		c, err := l.Accept()
		if err != nil {
			if catcher.IsTemporary(err) {
				logger.Debug("接受连接出现临时错误", "err", err)
				continue
			}
			r.wg.Wait()
			return err
		}
		catcher.Reset()

		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.handle(c)
		}()
	}
}

func (r *Responder) handle(c net.Conn) {
	ch := channel.NewConn(c)

	// 应答方的 destination 取自对端欢迎帧中的返回地址
	remote, err := r.cfg.exchange(c, types.EndpointAddress{}, false)
	if err != nil {
		logger.Debug("入站握手失败", "remote", c.RemoteAddr().String(), "err", err)
		ch.Close()
		return
	}
	logger.Debug("入站握手完成",
		"remotePeer", remote.PeerID.ShortString(),
		"logical", remote.PublicAddress.String())

	if r.onConn == nil {
		ch.Close()
		return
	}
	r.onConn(ch, remote)
}
