package wire

import (
	"fmt"
	"io"

	varint "github.com/multiformats/go-varint"
)

// WriteFrame 写入一帧，长度前缀与负载合并为一次 Write
func WriteFrame(w io.Writer, payload []byte) error {
	buf := make([]byte, 0, varint.UvarintSize(uint64(len(payload)))+len(payload))
	buf = append(buf, varint.ToUvarint(uint64(len(payload)))...)
	buf = append(buf, payload...)
	_, err := w.Write(buf)
	return err
}

// DefaultMaxFrameSize 未指定上限时使用的帧长度上限
const DefaultMaxFrameSize = 4 << 20

// ReadFrame 读取一帧
//
// 长度前缀逐字节读取，不会越过帧边界多读，
// 因此握手之后同一个 reader 可以直接交给后续处理。
// maxSize 非正时按 DefaultMaxFrameSize 限制，从不分配超过上限的缓冲区。
func ReadFrame(r io.Reader, maxSize int) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxFrameSize
	}
	br, ok := r.(io.ByteReader)
	if !ok {
		br = &byteReader{r: r}
	}
	n, err := varint.ReadUvarint(br)
	if err != nil {
		return nil, err
	}
	if n > uint64(maxSize) {
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, n, maxSize)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

type byteReader struct {
	r   io.Reader
	one [1]byte
}

func (b *byteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(b.r, b.one[:]); err != nil {
		return 0, err
	}
	return b.one[0], nil
}
