package handshake

import (
	"fmt"
	"net"
	"time"

	"github.com/dep2p/go-overlay/internal/core/transport/wire"
	pkgif "github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/lib/log"
	"github.com/dep2p/go-overlay/pkg/types"
)

var logger = log.Logger("core/transport/handshake")

// Config 本地握手参数
type Config struct {
	// PeerID 本地节点 ID
	PeerID types.PeerID

	// GroupID 本地所属组
	GroupID types.PeerGroupID

	// PublicAddress 本地返回地址，对端据此回复
	PublicAddress types.EndpointAddress

	// Timeout 读取对端欢迎帧的期限，0 表示不设期限
	Timeout time.Duration

	// NoPropagate 要求对端不要转发本地地址
	NoPropagate bool
}

func (c Config) welcome(dest types.EndpointAddress) *wire.Welcome {
	return &wire.Welcome{
		Destination:   dest,
		PublicAddress: c.PublicAddress,
		PeerID:        c.PeerID,
		GroupID:       c.GroupID,
		Version:       wire.ProtocolVersion,
		NoPropagate:   c.NoPropagate,
	}
}

// check 校验对端欢迎帧
func (c Config) check(remote *wire.Welcome) error {
	if err := remote.Validate(); err != nil {
		return err
	}
	if remote.PeerID == c.PeerID {
		return ErrSelfDial
	}
	if c.GroupID != "" && remote.GroupID != "" && remote.GroupID != c.GroupID {
		return fmt.Errorf("%w: %s", ErrGroupMismatch, remote.GroupID)
	}
	return nil
}

// exchange 发送本地欢迎帧并读取对端欢迎帧
//
// sendFirst 为 false 时先读后写，用于应答方。
func (c Config) exchange(conn net.Conn, dest types.EndpointAddress, sendFirst bool) (*wire.Welcome, error) {
	if c.Timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(c.Timeout))
		defer conn.SetDeadline(time.Time{})
	}

	if sendFirst {
		if err := wire.WriteWelcome(conn, c.welcome(dest)); err != nil {
			return nil, fmt.Errorf("write welcome: %w", err)
		}
	}

	remote, err := wire.ReadWelcome(conn)
	if err != nil {
		return nil, fmt.Errorf("read welcome: %w", err)
	}
	if err := c.check(remote); err != nil {
		return nil, err
	}

	if !sendFirst {
		if err := wire.WriteWelcome(conn, c.welcome(remote.PublicAddress)); err != nil {
			return nil, fmt.Errorf("write welcome: %w", err)
		}
	}
	return remote, nil
}

// ============================================================================
//                              Pipeline - 出站握手
// ============================================================================

// CompleteFunc 握手成功回调
//
// directedAt 为本次连接指向的物理端点地址，logical 为对端的逻辑地址。
type CompleteFunc func(ch pkgif.Channel, directedAt, logical types.EndpointAddress)

// Pipeline 返回执行出站握手的 ChannelInitializer
//
// dest 为本次连接指向的端点地址。握手在独立 goroutine 中进行，
// 成功时调用 complete 恰好一次；失败时只记录日志，不回调也不关闭连接。
func Pipeline(cfg Config, dest types.EndpointAddress, complete CompleteFunc) pkgif.ChannelInitializer {
	return func(ch pkgif.Channel) {
		go func() {
			remote, err := cfg.exchange(ch.Conn(), dest, true)
			if err != nil {
				logger.Debug("出站握手失败", "dest", dest.String(), "err", err)
				return
			}
			logger.Debug("出站握手完成",
				"dest", dest.String(),
				"remotePeer", remote.PeerID.ShortString(),
				"logical", remote.PublicAddress.String())
			complete(ch, dest, remote.PublicAddress)
		}()
	}
}
