package modulemanager

import "errors"

var (
	// ErrEmptyDescriptor 描述符为空
	ErrEmptyDescriptor = errors.New("empty module descriptor")

	// ErrNilConstructor 构造函数为空
	ErrNilConstructor = errors.New("nil module constructor")

	// ErrDuplicateDescriptor 描述符已注册
	ErrDuplicateDescriptor = errors.New("module descriptor already registered")

	// ErrUnsupportedDescriptor 描述符未注册
	ErrUnsupportedDescriptor = errors.New("unsupported module descriptor")

	// ErrNotInitialised 构建器尚未初始化
	ErrNotInitialised = errors.New("module builder not initialised")
)
