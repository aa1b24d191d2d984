package routeadv

import "errors"

var (
	// ErrMalformedAdvertisement 通告文档格式错误
	ErrMalformedAdvertisement = errors.New("malformed advertisement")

	// ErrInvalidCacheSize 缓存容量必须为正数
	ErrInvalidCacheSize = errors.New("cache size must be positive")
)
