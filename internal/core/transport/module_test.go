package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/internal/core/modulemanager"
	pkgif "github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/types"
)

func TestNewBuilder_SupportsAllProtocols(t *testing.T) {
	b := NewBuilder(config.DefaultTransportConfig())
	assert.Equal(t, []modulemanager.Descriptor{"quic", "tcp", "ws"}, b.SupportedDescriptors())
}

func TestOpen(t *testing.T) {
	for _, proto := range []string{"tcp", "quic", "ws"} {
		t.Run(proto, func(t *testing.T) {
			cfg := config.DefaultTransportConfig()
			cfg.Protocol = proto

			b, err := Open(cfg)
			require.NoError(t, err)
			defer b.Factory.ReleaseExternalResources()

			assert.Equal(t, proto, b.Protocol)
			assert.Equal(t, proto, b.Translator.ProtocolName())
			assert.NotNil(t, b.Listen)

			addr, err := b.Translator.ToSocketAddress(types.MustParseEndpointAddress(proto + "://127.0.0.1:9701"))
			require.NoError(t, err)
			assert.Contains(t, addr.String(), "9701")
		})
	}
}

func TestOpen_UnknownProtocol(t *testing.T) {
	cfg := config.DefaultTransportConfig()
	cfg.Protocol = "udp"
	_, err := Open(cfg)
	assert.ErrorIs(t, err, ErrUnknownProtocol)
}

func TestOpen_ListenAndConnect(t *testing.T) {
	b, err := Open(config.DefaultTransportConfig())
	require.NoError(t, err)
	defer b.Factory.ReleaseExternalResources()

	l, err := b.Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	accepted := make(chan struct{})
	go func() {
		c, err := l.Accept()
		if err == nil {
			c.Close()
		}
		close(accepted)
	}()

	inited := make(chan pkgif.Channel, 1)
	fut := b.Factory.Connect(context.Background(), l.Addr(), func(ch pkgif.Channel) { inited <- ch })
	<-fut.Done()
	require.True(t, fut.IsSuccess(), "connect: %v", fut.Err())
	ch := <-inited
	assert.Same(t, fut.Channel(), ch)
	require.NoError(t, ch.Close())
	<-accepted
}

func TestModule(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Transport.Protocol = "ws"

	var (
		f  pkgif.ChannelFactory
		tr pkgif.AddressTranslator
		b  Binding
	)
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module(),
		fx.Populate(&f, &tr, &b),
	)
	app.RequireStart()
	defer app.RequireStop()

	assert.Equal(t, "ws", tr.ProtocolName())
	assert.Same(t, b.Factory, f)
	require.NoError(t, f.ReleaseExternalResources())
}
