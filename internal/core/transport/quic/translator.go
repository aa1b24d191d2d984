package quic

import (
	"fmt"
	"net"

	pkgif "github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/types"
)

// ProtocolName 协议名
const ProtocolName = "quic"

// 确保实现接口
var _ pkgif.AddressTranslator = Translator{}

// Translator quic:// 端点地址与 *net.UDPAddr 的互相转换
type Translator struct{}

// ToSocketAddress 解析 quic://host:port
func (Translator) ToSocketAddress(addr types.EndpointAddress) (net.Addr, error) {
	if addr.Protocol != ProtocolName {
		return nil, fmt.Errorf("%w: %q", ErrWrongProtocol, addr.Protocol)
	}
	host, port, err := net.SplitHostPort(addr.Address)
	if err != nil {
		return nil, err
	}
	if host == "" {
		return nil, fmt.Errorf("missing host in %q", addr.Address)
	}
	return net.ResolveUDPAddr("udp", net.JoinHostPort(host, port))
}

// ToEndpointAddress 将套接字地址还原为 quic:// 端点地址
func (Translator) ToEndpointAddress(addr net.Addr) types.EndpointAddress {
	if addr == nil {
		return types.EndpointAddress{}
	}
	return types.EndpointAddress{Protocol: ProtocolName, Address: addr.String()}
}

// ProtocolName 返回 "quic"
func (Translator) ProtocolName() string { return ProtocolName }
