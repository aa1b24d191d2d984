package wire

import (
	"fmt"

	"github.com/klauspost/compress/s2"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-overlay/pkg/types"
)

// Codec 消息帧编解码器
type Codec struct {
	// CompressThreshold 元素数据达到该长度时使用 s2 压缩，0 表示不压缩
	CompressThreshold int

	// MaxMessageSize 解码时允许的最大解压后元素长度，非正时为 DefaultMaxFrameSize
	MaxMessageSize int
}

// Encode 编码消息帧负载
//
// src/dst 写入帧头，消息自身的 Source/Destination 字段不参与编码。
func (c Codec) Encode(msg *types.Message, src, dst types.EndpointAddress) []byte {
	var b []byte
	b = appendString(b, 1, src.String())
	b = appendString(b, 2, dst.String())
	for _, e := range msg.Elements() {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, c.encodeElement(e))
	}
	return b
}

func (c Codec) encodeElement(e types.Element) []byte {
	var b []byte
	b = appendString(b, 1, e.Namespace)
	b = appendString(b, 2, e.Name)
	b = appendString(b, 3, e.MimeType)

	data := e.Data
	compressed := false
	if c.CompressThreshold > 0 && len(data) >= c.CompressThreshold {
		if enc := s2.Encode(nil, data); len(enc) < len(data) {
			data = enc
			compressed = true
		}
	}
	b = protowire.AppendTag(b, 4, protowire.BytesType)
	b = protowire.AppendBytes(b, data)
	if compressed {
		b = protowire.AppendTag(b, 5, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	return b
}

// Decode 解码消息帧负载
func (c Codec) Decode(b []byte) (*types.Message, error) {
	msg := types.NewMessage()
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		if typ != protowire.BytesType || num < 1 || num > 3 {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}

		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		switch num {
		case 1, 2:
			addr, err := types.ParseEndpointAddress(string(v))
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
			}
			if num == 1 {
				msg.Source = addr
			} else {
				msg.Destination = addr
			}
		case 3:
			e, err := c.decodeElement(v)
			if err != nil {
				return nil, err
			}
			msg.AddElement(e)
		}
	}
	return msg, nil
}

func (c Codec) decodeElement(b []byte) (types.Element, error) {
	var (
		e          types.Element
		compressed bool
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return e, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case typ == protowire.BytesType && num >= 1 && num <= 4:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return e, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			b = b[n:]
			switch num {
			case 1:
				e.Namespace = string(v)
			case 2:
				e.Name = string(v)
			case 3:
				e.MimeType = string(v)
			case 4:
				e.Data = append([]byte(nil), v...)
			}
		case typ == protowire.VarintType && num == 5:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return e, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			b = b[n:]
			compressed = v != 0
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return e, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	if compressed {
		size, err := s2.DecodedLen(e.Data)
		if err != nil {
			return e, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		limit := c.MaxMessageSize
		if limit <= 0 {
			limit = DefaultMaxFrameSize
		}
		if size > limit {
			return e, fmt.Errorf("%w: element %d bytes", ErrFrameTooLarge, size)
		}
		data, err := s2.Decode(nil, e.Data)
		if err != nil {
			return e, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		e.Data = data
	}
	return e, nil
}
