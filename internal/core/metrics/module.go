package metrics

import (
	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-overlay/pkg/lib/log"
)

var logger = log.Logger("core/metrics")

// Params 依赖参数
type Params struct {
	fx.In

	Clock clock.Clock `optional:"true"`
}

// Module 返回 metrics 的 Fx 模块
//
// 提供 Reporter 与一个独立的 Prometheus 注册表。
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(
			fx.Annotate(
				func(p Params) *BandwidthCounter { return NewBandwidthCounter(p.Clock) },
				fx.As(new(Reporter)),
			),
			fx.Annotate(
				prometheus.NewRegistry,
				fx.As(new(prometheus.Registerer)),
				fx.As(new(prometheus.Gatherer)),
			),
		),
	)
}
