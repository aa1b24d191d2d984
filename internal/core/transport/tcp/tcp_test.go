package tcp

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-overlay/config"
	pkgif "github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/types"
)

func TestTranslator_RoundTrip(t *testing.T) {
	tr := Translator{}
	assert.Equal(t, "tcp", tr.ProtocolName())

	sa, err := tr.ToSocketAddress(types.MustParseEndpointAddress("tcp://127.0.0.1:9701"))
	require.NoError(t, err)
	tcpAddr, ok := sa.(*net.TCPAddr)
	require.True(t, ok)
	assert.Equal(t, 9701, tcpAddr.Port)

	back := tr.ToEndpointAddress(sa)
	assert.Equal(t, "tcp://127.0.0.1:9701", back.String())
}

func TestTranslator_Rejects(t *testing.T) {
	tr := Translator{}

	_, err := tr.ToSocketAddress(types.MustParseEndpointAddress("udp://127.0.0.1:9701"))
	assert.ErrorIs(t, err, ErrWrongProtocol)

	_, err = tr.ToSocketAddress(types.MustParseEndpointAddress("tcp://no-port"))
	assert.Error(t, err)

	_, err = tr.ToSocketAddress(types.MustParseEndpointAddress("tcp://:9701"))
	assert.Error(t, err)
}

func TestFactory_ConnectAndListen(t *testing.T) {
	f := NewFactory(config.DefaultTransportConfig().TCP)
	defer f.ReleaseExternalResources()

	l, err := f.Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := l.Accept()
		if err == nil {
			accepted <- c
		}
	}()

	inited := make(chan pkgif.Channel, 1)
	fut := f.Connect(context.Background(), l.Addr(), func(ch pkgif.Channel) { inited <- ch })

	select {
	case <-fut.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("connect did not complete")
	}
	require.True(t, fut.IsSuccess(), "err: %v", fut.Err())

	ch := <-inited
	defer ch.Close()
	assert.Equal(t, l.Addr().String(), ch.RemoteAddr().String())

	srv := <-accepted
	defer srv.Close()

	_, err = ch.Conn().Write([]byte("ping"))
	require.NoError(t, err)
	buf := make([]byte, 4)
	_, err = srv.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf))
}

func TestFactory_ConnectRefused(t *testing.T) {
	// 占用一个端口后立即关闭，保证无人监听
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr()
	l.Close()

	f := NewFactory(config.DefaultTransportConfig().TCP)
	fut := f.Connect(context.Background(), addr, nil)
	<-fut.Done()
	assert.False(t, fut.IsSuccess())
	assert.Error(t, fut.Err())
}

func TestFactory_Released(t *testing.T) {
	f := NewFactory(config.DefaultTransportConfig().TCP)
	require.NoError(t, f.ReleaseExternalResources())

	fut := f.Connect(context.Background(), &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 1}, nil)
	<-fut.Done()
	assert.ErrorIs(t, fut.Err(), ErrFactoryReleased)

	_, err := f.Listen("127.0.0.1:0")
	assert.ErrorIs(t, err, ErrFactoryReleased)
}

func TestFactory_RejectsForeignAddr(t *testing.T) {
	f := NewFactory(config.DefaultTransportConfig().TCP)
	fut := f.Connect(context.Background(), &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 1}, nil)
	<-fut.Done()
	assert.ErrorIs(t, fut.Err(), ErrNotTCPAddr)
}
