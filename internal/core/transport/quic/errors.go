package quic

import "errors"

var (
	// ErrFactoryReleased 工厂资源已释放
	ErrFactoryReleased = errors.New("quic factory released")

	// ErrNotUDPAddr 地址不是 UDP 地址
	ErrNotUDPAddr = errors.New("not a udp address")

	// ErrWrongProtocol 端点地址协议不是 quic
	ErrWrongProtocol = errors.New("endpoint address protocol is not quic")

	// ErrListenerClosed 监听器已关闭
	ErrListenerClosed = errors.New("quic listener closed")
)
