package endpoint

import (
	"context"

	"go.uber.org/fx"

	pkgif "github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/types"
)

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	GroupID  types.PeerGroupID
	EventBus pkgif.EventBus
}

// ModuleOutput 定义模块输出
type ModuleOutput struct {
	fx.Out

	Service         *Service
	EndpointService pkgif.EndpointService
}

// Module 返回端点服务的 Fx 模块
func Module() fx.Option {
	return fx.Module("endpoint",
		fx.Provide(ProvideService),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideService 创建端点服务
func ProvideService(in ModuleInput) (ModuleOutput, error) {
	svc, err := NewService(in.GroupID, in.EventBus)
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Service: svc, EndpointService: svc}, nil
}

func registerLifecycle(lc fx.Lifecycle, svc *Service) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return svc.Close()
		},
	})
}
