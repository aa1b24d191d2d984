package tcp

import "errors"

var (
	// ErrFactoryReleased 工厂资源已释放
	ErrFactoryReleased = errors.New("tcp factory released")

	// ErrNotTCPAddr 地址不是 TCP 地址
	ErrNotTCPAddr = errors.New("not a tcp address")

	// ErrWrongProtocol 端点地址协议不是 tcp
	ErrWrongProtocol = errors.New("endpoint address protocol is not tcp")
)
