package ws

import "errors"

var (
	// ErrFactoryReleased 工厂资源已释放
	ErrFactoryReleased = errors.New("websocket factory released")

	// ErrNotTCPAddr 地址不是 TCP 地址
	ErrNotTCPAddr = errors.New("not a tcp address")

	// ErrWrongProtocol 端点地址协议不是 ws
	ErrWrongProtocol = errors.New("endpoint address protocol is not ws")

	// ErrListenerClosed 监听器已关闭
	ErrListenerClosed = errors.New("websocket listener closed")
)
