package client

import (
	"sync"

	pkgif "github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/types"
)

// connRegistry 单次连接尝试的握手结果
//
// 每次 GetMessenger 新建一个，只写一次，不跨尝试复用。
// done 关闭之后字段可以无锁读取。
type connRegistry struct {
	once sync.Once
	done chan struct{}

	directedAt types.EndpointAddress
	logical    types.EndpointAddress
}

func newConnRegistry() *connRegistry {
	return &connRegistry{done: make(chan struct{})}
}

// complete 由握手流程在成功时调用，重复调用被忽略
func (r *connRegistry) complete(_ pkgif.Channel, directedAt, logical types.EndpointAddress) {
	r.once.Do(func() {
		r.directedAt = directedAt
		r.logical = logical
		close(r.done)
	})
}
