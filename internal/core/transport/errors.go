package transport

import "errors"

var (
	// ErrUnknownProtocol 没有该协议的传输实现
	ErrUnknownProtocol = errors.New("unknown transport protocol")
)
