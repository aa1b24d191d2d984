package eventbus

import (
	"go.uber.org/fx"

	pkgif "github.com/dep2p/go-overlay/pkg/interfaces"
)

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("eventbus",
		fx.Provide(
			fx.Annotate(NewBus, fx.As(new(pkgif.EventBus))),
		),
	)
}
