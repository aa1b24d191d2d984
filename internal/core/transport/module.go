package transport

import (
	"fmt"
	"net"

	"go.uber.org/fx"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/internal/core/modulemanager"
	"github.com/dep2p/go-overlay/internal/core/transport/quic"
	"github.com/dep2p/go-overlay/internal/core/transport/tcp"
	"github.com/dep2p/go-overlay/internal/core/transport/ws"
	pkgif "github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/lib/log"
)

var logger = log.Logger("core/transport")

// ============================================================================
//                              Binding
// ============================================================================

// Binding 一种协议的传输组件
type Binding struct {
	Protocol   string
	Factory    pkgif.ChannelFactory
	Translator pkgif.AddressTranslator

	// Listen 在 addr 上监听入站连接，与 Factory 共享资源
	Listen func(addr string) (net.Listener, error)
}

// NewBuilder 创建注册了 tcp、quic、ws 的传输构建器
func NewBuilder(cfg config.TransportConfig) *modulemanager.Builder[Binding] {
	b := modulemanager.NewBuilder[Binding]("transport")

	_ = b.Register(tcp.ProtocolName, func(modulemanager.Descriptor) (Binding, error) {
		f := tcp.NewFactory(cfg.TCP)
		return Binding{Protocol: tcp.ProtocolName, Factory: f, Translator: tcp.Translator{}, Listen: f.Listen}, nil
	})
	_ = b.Register(quic.ProtocolName, func(modulemanager.Descriptor) (Binding, error) {
		f, err := quic.NewFactory(cfg.QUIC)
		if err != nil {
			return Binding{}, err
		}
		return Binding{Protocol: quic.ProtocolName, Factory: f, Translator: quic.Translator{}, Listen: f.Listen}, nil
	})
	_ = b.Register(ws.ProtocolName, func(modulemanager.Descriptor) (Binding, error) {
		f := ws.NewFactory(cfg.WebSocket)
		return Binding{Protocol: ws.ProtocolName, Factory: f, Translator: ws.Translator{}, Listen: f.Listen}, nil
	})
	return b
}

// Open 构建 cfg.Protocol 对应的传输
func Open(cfg config.TransportConfig) (Binding, error) {
	b := NewBuilder(cfg)
	if !b.CanBuild(modulemanager.Descriptor(cfg.Protocol)) {
		return Binding{}, fmt.Errorf("%w: %q", ErrUnknownProtocol, cfg.Protocol)
	}
	if err := b.Initialise(); err != nil {
		return Binding{}, err
	}
	binding, err := b.Build(modulemanager.Descriptor(cfg.Protocol))
	if err != nil {
		return Binding{}, err
	}
	logger.Info("传输已创建", "protocol", binding.Protocol)
	return binding, nil
}

// ============================================================================
//                              Fx 模块
// ============================================================================

// Output Fx 输出
type Output struct {
	fx.Out

	Binding    Binding
	Factory    pkgif.ChannelFactory
	Translator pkgif.AddressTranslator
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("transport",
		fx.Provide(ProvideBinding),
	)
}

// ProvideBinding 按统一配置提供传输组件
func ProvideBinding(cfg *config.Config) (Output, error) {
	tc := config.DefaultTransportConfig()
	if cfg != nil {
		tc = cfg.Transport
	}
	binding, err := Open(tc)
	if err != nil {
		return Output{}, err
	}
	return Output{
		Binding:    binding,
		Factory:    binding.Factory,
		Translator: binding.Translator,
	}, nil
}
