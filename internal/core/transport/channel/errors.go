package channel

import "errors"

var (
	// ErrCanceled 连接在完成前被取消
	ErrCanceled = errors.New("connect canceled")

	// ErrGroupClosed 连接池已进入关闭流程
	ErrGroupClosed = errors.New("channel group closed")
)
