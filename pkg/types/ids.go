package types

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	urnPrefix   = "urn:overlay:"
	peerPrefix  = "peer-"
	groupPrefix = "group-"
)

// ============================================================================
//                              PeerID - 节点标识
// ============================================================================

// PeerID 节点唯一标识符
//
// 格式：urn:overlay:peer-<uuid>
type PeerID string

// NewPeerID 生成新的随机 PeerID
func NewPeerID() PeerID {
	return PeerID(urnPrefix + peerPrefix + uuid.NewString())
}

// ParsePeerID 解析并校验 PeerID
func ParsePeerID(s string) (PeerID, error) {
	if s == "" {
		return "", ErrEmptyPeerID
	}
	if err := checkURN(s, peerPrefix); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPeerID, err)
	}
	return PeerID(s), nil
}

// String 返回字符串表示
func (id PeerID) String() string {
	return string(id)
}

// IsEmpty 是否为空
func (id PeerID) IsEmpty() bool {
	return id == ""
}

// UniqueValue 返回去掉 urn 前缀的唯一部分（peer-<uuid>）
func (id PeerID) UniqueValue() string {
	return strings.TrimPrefix(string(id), urnPrefix)
}

// ShortString 返回日志使用的短标识
func (id PeerID) ShortString() string {
	v := strings.TrimPrefix(id.UniqueValue(), peerPrefix)
	if len(v) > 8 {
		return v[:8]
	}
	return v
}

// EndpointAddress 返回节点的逻辑地址 overlay://peer-<uuid>
func (id PeerID) EndpointAddress() EndpointAddress {
	return EndpointAddress{Protocol: ProtocolOverlay, Address: id.UniqueValue()}
}

// ============================================================================
//                              PeerGroupID - 组标识
// ============================================================================

// PeerGroupID 节点组标识符
//
// 格式：urn:overlay:group-<uuid>
type PeerGroupID string

// NetGroupID 默认的全网组
const NetGroupID PeerGroupID = "urn:overlay:group-00000000-0000-0000-0000-000000000001"

// NewPeerGroupID 生成新的随机组 ID
func NewPeerGroupID() PeerGroupID {
	return PeerGroupID(urnPrefix + groupPrefix + uuid.NewString())
}

// ParsePeerGroupID 解析并校验组 ID
func ParsePeerGroupID(s string) (PeerGroupID, error) {
	if err := checkURN(s, groupPrefix); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidGroupID, err)
	}
	return PeerGroupID(s), nil
}

// String 返回字符串表示
func (id PeerGroupID) String() string {
	return string(id)
}

// UniqueValue 返回去掉 urn 前缀的唯一部分
func (id PeerGroupID) UniqueValue() string {
	return strings.TrimPrefix(string(id), urnPrefix)
}

func checkURN(s, kind string) error {
	rest, ok := strings.CutPrefix(s, urnPrefix+kind)
	if !ok {
		return fmt.Errorf("missing %q prefix", urnPrefix+kind)
	}
	if _, err := uuid.Parse(rest); err != nil {
		return err
	}
	return nil
}
