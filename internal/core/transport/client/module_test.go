package client

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-overlay/config"
	pkgif "github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/tests/mocks"
)

func TestModule_Lifecycle(t *testing.T) {
	cfg := config.NewConfig()
	factory := &mocks.MockChannelFactory{}
	svc := mocks.NewMockEndpointService()

	var (
		c      *Client
		sender pkgif.MessageSender
	)
	app := fxtest.New(t,
		fx.Supply(cfg),
		fx.Provide(cfg.Identity.Resolve),
		fx.Provide(
			func() pkgif.ChannelFactory { return factory },
			func() pkgif.AddressTranslator { return &mocks.MockTranslator{Protocol: "tcp"} },
			func() pkgif.EndpointService { return svc },
			func() prometheus.Registerer { return prometheus.NewRegistry() },
		),
		Module(),
		fx.Populate(&c, &sender),
	)

	app.RequireStart()
	require.NotNil(t, c)
	assert.Same(t, c, sender)
	assert.Equal(t, StateStarted, c.State())
	assert.Equal(t, 1, svc.AddedCount())
	assert.Equal(t, "tcp", sender.ProtocolName())

	app.RequireStop()
	assert.Equal(t, StateStopped, c.State())
	assert.Equal(t, int32(1), factory.ReleaseCalls.Load())
	assert.Equal(t, 1, svc.RemovedCount())
}

func TestModule_RefusedRegistrationFailsStart(t *testing.T) {
	cfg := config.NewConfig()
	svc := mocks.NewMockEndpointService()
	svc.AddMessageTransportFunc = func(pkgif.MessageTransport) pkgif.MessengerEventListener { return nil }

	app := fx.New(
		fx.NopLogger,
		fx.Supply(cfg),
		fx.Provide(cfg.Identity.Resolve),
		fx.Provide(
			func() pkgif.ChannelFactory { return &mocks.MockChannelFactory{} },
			func() pkgif.AddressTranslator { return &mocks.MockTranslator{} },
			func() pkgif.EndpointService { return svc },
		),
		Module(),
	)
	err := app.Start(context.Background())
	assert.ErrorIs(t, err, ErrRegistrationRefused)
}
