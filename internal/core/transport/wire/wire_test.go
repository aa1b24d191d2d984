package wire

import (
	"bytes"
	"io"
	"strings"
	"testing"

	varint "github.com/multiformats/go-varint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-overlay/pkg/types"
)

func TestReadFrame_DoesNotOverRead(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte("first")))
	require.NoError(t, WriteFrame(&buf, []byte("second")))

	// 只暴露 io.Reader，强制走逐字节读取路径
	r := struct{ io.Reader }{&buf}

	b, err := ReadFrame(r, 64)
	require.NoError(t, err)
	assert.Equal(t, "first", string(b))

	b, err = ReadFrame(r, 64)
	require.NoError(t, err)
	assert.Equal(t, "second", string(b))

	_, err = ReadFrame(r, 64)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadFrame_TooLarge(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, make([]byte, 100)))

	_, err := ReadFrame(&buf, 10)
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestReadFrame_UnboundedLimitIsCapped(t *testing.T) {
	r := bytes.NewReader(varint.ToUvarint(1 << 62))

	_, err := ReadFrame(r, 0)
	assert.ErrorIs(t, err, ErrFrameTooLarge)

	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte("ok")))
	b, err := ReadFrame(&buf, -1)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(b))
}

func TestWelcome_Exchange(t *testing.T) {
	peer := types.NewPeerID()
	in := &Welcome{
		Destination:   types.MustParseEndpointAddress("tcp://10.0.0.2:9701"),
		PublicAddress: peer.EndpointAddress(),
		PeerID:        peer,
		GroupID:       types.NetGroupID,
		Version:       ProtocolVersion,
		NoPropagate:   true,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWelcome(&buf, in))

	out, err := ReadWelcome(&buf)
	require.NoError(t, err)
	require.NoError(t, out.Validate())
	assert.Equal(t, in, out)
}

func TestWelcome_Validate(t *testing.T) {
	peer := types.NewPeerID()

	w := &Welcome{PeerID: peer, PublicAddress: peer.EndpointAddress(), Version: "0.9"}
	assert.ErrorIs(t, w.Validate(), ErrVersionMismatch)

	w = &Welcome{PublicAddress: peer.EndpointAddress(), Version: ProtocolVersion}
	assert.ErrorIs(t, w.Validate(), ErrMalformed)

	w = &Welcome{PeerID: peer, Version: ProtocolVersion}
	assert.ErrorIs(t, w.Validate(), ErrMalformed)
}

func TestUnmarshalWelcome_Garbage(t *testing.T) {
	_, err := UnmarshalWelcome([]byte{0x0a, 0xff})
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = UnmarshalWelcome([]byte{0x1a, 0x03, 'b', 'a', 'd'})
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestCodec_Message(t *testing.T) {
	codec := Codec{CompressThreshold: 64, MaxMessageSize: 1 << 20}

	src := types.MustParseEndpointAddress("tcp://10.0.0.1:9701")
	dst := types.MustParseEndpointAddress("tcp://10.0.0.2:9701/EndpointService/g")
	msg := types.NewMessage()
	msg.AddString("jxta", "hello", "world")
	big := strings.Repeat("overlay", 100)
	msg.AddElement(types.Element{Namespace: "app", Name: "blob", Data: []byte(big)})

	payload := codec.Encode(msg, src, dst)
	assert.Less(t, len(payload), len(big), "large element should be compressed")

	got, err := codec.Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, src, got.Source)
	assert.Equal(t, dst, got.Destination)
	require.Equal(t, 2, got.Len())

	e, ok := got.Element("jxta", "hello")
	require.True(t, ok)
	assert.Equal(t, "world", string(e.Data))
	assert.Equal(t, "text/plain;charset=UTF-8", e.MimeType)

	e, ok = got.Element("app", "blob")
	require.True(t, ok)
	assert.Equal(t, big, string(e.Data))
}

func TestCodec_DecompressLimit(t *testing.T) {
	msg := types.NewMessage()
	msg.AddElement(types.Element{Name: "blob", Data: bytes.Repeat([]byte{'a'}, 4096)})

	payload := Codec{CompressThreshold: 16}.Encode(msg, types.EndpointAddress{}, types.EndpointAddress{})

	_, err := Codec{MaxMessageSize: 1024}.Decode(payload)
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}
