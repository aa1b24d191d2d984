package handshake

import "errors"

var (
	// ErrGroupMismatch 对端属于其他组
	ErrGroupMismatch = errors.New("peer group mismatch")

	// ErrSelfDial 连接到了自己
	ErrSelfDial = errors.New("connected to self")
)
