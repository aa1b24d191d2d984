package types

import "errors"

// ============================================================================
//                              ID 相关错误
// ============================================================================

var (
	// ErrEmptyPeerID 空节点 ID
	ErrEmptyPeerID = errors.New("empty peer ID")

	// ErrInvalidPeerID 无效的节点 ID
	ErrInvalidPeerID = errors.New("invalid peer ID")

	// ErrInvalidGroupID 无效的组 ID
	ErrInvalidGroupID = errors.New("invalid peer group ID")
)

// ============================================================================
//                              地址相关错误
// ============================================================================

var (
	// ErrEmptyAddress 空地址
	ErrEmptyAddress = errors.New("empty endpoint address")

	// ErrInvalidAddress 无效的端点地址
	ErrInvalidAddress = errors.New("invalid endpoint address")
)
