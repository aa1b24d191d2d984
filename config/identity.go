package config

import (
	"fmt"

	"github.com/dep2p/go-overlay/pkg/types"
)

// IdentityConfig 本地身份配置
//
// 为空时在启动时生成临时身份。
type IdentityConfig struct {
	// PeerID 本地节点 ID（urn:overlay:peer-<uuid>）
	PeerID string `json:"peer_id,omitempty"`

	// GroupID 所属组 ID，默认为全网组
	GroupID string `json:"group_id,omitempty"`
}

// DefaultIdentityConfig 返回默认身份配置
func DefaultIdentityConfig() IdentityConfig {
	return IdentityConfig{
		GroupID: types.NetGroupID.String(),
	}
}

// Validate 验证身份配置
func (c IdentityConfig) Validate() error {
	if c.PeerID != "" {
		if _, err := types.ParsePeerID(c.PeerID); err != nil {
			return fmt.Errorf("identity.peer_id: %w", err)
		}
	}
	if c.GroupID != "" {
		if _, err := types.ParsePeerGroupID(c.GroupID); err != nil {
			return fmt.Errorf("identity.group_id: %w", err)
		}
	}
	return nil
}

// Resolve 返回实际使用的节点 ID 与组 ID
func (c IdentityConfig) Resolve() (types.PeerID, types.PeerGroupID) {
	peerID := types.PeerID(c.PeerID)
	if peerID.IsEmpty() {
		peerID = types.NewPeerID()
	}
	groupID := types.PeerGroupID(c.GroupID)
	if groupID == "" {
		groupID = types.NetGroupID
	}
	return peerID, groupID
}
