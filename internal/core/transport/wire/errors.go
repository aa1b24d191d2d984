package wire

import "errors"

var (
	// ErrFrameTooLarge 帧超过允许的最大长度
	ErrFrameTooLarge = errors.New("frame too large")

	// ErrMalformed 帧内容无法解析
	ErrMalformed = errors.New("malformed frame")

	// ErrVersionMismatch 握手版本不一致
	ErrVersionMismatch = errors.New("protocol version mismatch")
)
