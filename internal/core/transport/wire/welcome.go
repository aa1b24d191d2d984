package wire

import (
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-overlay/pkg/types"
)

// ProtocolVersion 当前欢迎帧版本
const ProtocolVersion = "1.1"

// MaxWelcomeSize 欢迎帧最大长度
const MaxWelcomeSize = 4096

// Welcome 欢迎帧
//
// 连接双方各发送一次，用于互相学习对方的逻辑地址。
type Welcome struct {
	Destination   types.EndpointAddress
	PublicAddress types.EndpointAddress
	PeerID        types.PeerID
	GroupID       types.PeerGroupID
	Version       string
	NoPropagate   bool
}

// Marshal 编码欢迎帧负载
func (w *Welcome) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, w.Destination.String())
	b = appendString(b, 2, w.PublicAddress.String())
	b = appendString(b, 3, w.PeerID.String())
	b = appendString(b, 4, w.GroupID.String())
	b = appendString(b, 5, w.Version)
	if w.NoPropagate {
		b = protowire.AppendTag(b, 6, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	return b
}

// UnmarshalWelcome 解码欢迎帧负载
func UnmarshalWelcome(b []byte) (*Welcome, error) {
	w := &Welcome{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num >= 1 && num <= 5 && typ == protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			b = b[n:]
			if err := w.setString(num, s); err != nil {
				return nil, err
			}
		case num == 6 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			b = b[n:]
			w.NoPropagate = v != 0
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return w, nil
}

// Validate 检查欢迎帧是否来自合法的协议参与者
func (w *Welcome) Validate() error {
	if w.Version != ProtocolVersion {
		return fmt.Errorf("%w: got %q want %q", ErrVersionMismatch, w.Version, ProtocolVersion)
	}
	if w.PeerID.IsEmpty() {
		return fmt.Errorf("%w: missing peer id", ErrMalformed)
	}
	if w.PublicAddress.IsZero() {
		return fmt.Errorf("%w: missing public address", ErrMalformed)
	}
	return nil
}

func (w *Welcome) setString(num protowire.Number, s string) error {
	var err error
	switch num {
	case 1:
		if s != "" {
			w.Destination, err = types.ParseEndpointAddress(s)
		}
	case 2:
		if s != "" {
			w.PublicAddress, err = types.ParseEndpointAddress(s)
		}
	case 3:
		if s != "" {
			w.PeerID, err = types.ParsePeerID(s)
		}
	case 4:
		w.GroupID = types.PeerGroupID(s)
	case 5:
		w.Version = s
	}
	if err != nil {
		return fmt.Errorf("%w: field %d: %v", ErrMalformed, num, err)
	}
	return nil
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// WriteWelcome 写出欢迎帧
func WriteWelcome(w io.Writer, wel *Welcome) error {
	return WriteFrame(w, wel.Marshal())
}

// ReadWelcome 读取并解析欢迎帧，不做版本校验
func ReadWelcome(r io.Reader) (*Welcome, error) {
	b, err := ReadFrame(r, MaxWelcomeSize)
	if err != nil {
		return nil, err
	}
	return UnmarshalWelcome(b)
}
