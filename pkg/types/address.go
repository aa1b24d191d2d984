package types

import (
	"fmt"
	"strings"
)

// ProtocolOverlay 逻辑地址使用的协议名
//
// 形如 overlay://peer-0123...，与物理网络位置无关。
const ProtocolOverlay = "overlay"

// EndpointAddress 端点地址
//
// 字符串格式：protocol://address[/serviceName[/serviceParam]]
//
//   - tcp://10.0.0.1:9701                      物理端点地址
//   - overlay://peer-5f0c.../EndpointService:g 逻辑地址（带服务）
//
// 值类型，按值比较，不可变。
type EndpointAddress struct {
	Protocol     string
	Address      string
	ServiceName  string
	ServiceParam string
}

// NewEndpointAddress 创建端点地址
func NewEndpointAddress(protocol, address, serviceName, serviceParam string) EndpointAddress {
	return EndpointAddress{
		Protocol:     protocol,
		Address:      address,
		ServiceName:  serviceName,
		ServiceParam: serviceParam,
	}
}

// ParseEndpointAddress 解析端点地址字符串
func ParseEndpointAddress(s string) (EndpointAddress, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return EndpointAddress{}, ErrEmptyAddress
	}

	proto, rest, ok := strings.Cut(s, "://")
	if !ok || proto == "" || rest == "" {
		return EndpointAddress{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}

	parts := strings.SplitN(rest, "/", 3)
	addr := EndpointAddress{
		Protocol: strings.ToLower(proto),
		Address:  parts[0],
	}
	if addr.Address == "" {
		return EndpointAddress{}, fmt.Errorf("%w: missing address in %q", ErrInvalidAddress, s)
	}
	if len(parts) > 1 {
		addr.ServiceName = parts[1]
	}
	if len(parts) > 2 {
		addr.ServiceParam = parts[2]
	}
	return addr, nil
}

// MustParseEndpointAddress 解析失败时 panic，仅用于常量与测试
func MustParseEndpointAddress(s string) EndpointAddress {
	a, err := ParseEndpointAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String 返回规范字符串形式
func (a EndpointAddress) String() string {
	if a.IsZero() {
		return ""
	}
	var b strings.Builder
	b.WriteString(a.Protocol)
	b.WriteString("://")
	b.WriteString(a.Address)
	if a.ServiceName != "" {
		b.WriteByte('/')
		b.WriteString(a.ServiceName)
		if a.ServiceParam != "" {
			b.WriteByte('/')
			b.WriteString(a.ServiceParam)
		}
	}
	return b.String()
}

// IsZero 是否为空地址
func (a EndpointAddress) IsZero() bool {
	return a.Protocol == "" && a.Address == ""
}

// Base 返回去掉服务部分的地址
func (a EndpointAddress) Base() EndpointAddress {
	return EndpointAddress{Protocol: a.Protocol, Address: a.Address}
}

// WithService 返回带指定服务的地址副本
func (a EndpointAddress) WithService(name, param string) EndpointAddress {
	a.ServiceName = name
	a.ServiceParam = param
	return a
}

// IsLogical 是否为逻辑（overlay）地址
func (a EndpointAddress) IsLogical() bool {
	return a.Protocol == ProtocolOverlay
}
