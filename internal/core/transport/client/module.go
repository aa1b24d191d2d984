package client

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/internal/core/metrics"
	pkgif "github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/types"
)

// ModuleInput 客户端模块输入
type ModuleInput struct {
	fx.In

	Config     *config.Config
	Factory    pkgif.ChannelFactory
	Translator pkgif.AddressTranslator
	Service    pkgif.EndpointService
	PeerID     types.PeerID
	GroupID    types.PeerGroupID

	Clock      clock.Clock           `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
	Bandwidth  metrics.Reporter      `optional:"true"`
}

// ModuleOutput 客户端模块输出
type ModuleOutput struct {
	fx.Out

	Client *Client
	Sender pkgif.MessageSender
}

// Module 返回客户端的 Fx 模块
//
// 启动时向端点服务注册，停止时依次执行 BeginStop 与 Stop。
func Module() fx.Option {
	return fx.Module("transport_client",
		fx.Provide(ProvideClient),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideClient 从配置与组合根提供的能力创建客户端
func ProvideClient(in ModuleInput) (ModuleOutput, error) {
	var opts []Option
	if in.Clock != nil {
		opts = append(opts, WithClock(in.Clock))
	}
	if in.Registerer != nil && in.Config.Metrics.Enabled {
		opts = append(opts, WithRegisterer(in.Registerer, in.Config.Metrics.Namespace))
	}
	if in.Bandwidth != nil {
		opts = append(opts, WithBandwidthReporter(in.Bandwidth))
	}

	c, err := New(Params{
		Transport:  in.Config.Transport,
		Messenger:  in.Config.Messenger,
		Factory:    in.Factory,
		Translator: in.Translator,
		PeerID:     in.PeerID,
		GroupID:    in.GroupID,
	}, opts...)
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Client: c, Sender: c}, nil
}

type lifecycleInput struct {
	fx.In

	LC      fx.Lifecycle
	Client  *Client
	Service pkgif.EndpointService
}

func registerLifecycle(in lifecycleInput) {
	in.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return in.Client.Start(in.Service)
		},
		OnStop: func(ctx context.Context) error {
			if err := in.Client.BeginStop(); err != nil {
				return nil
			}
			return in.Client.Stop(ctx)
		},
	})
}
