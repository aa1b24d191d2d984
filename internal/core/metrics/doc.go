// Package metrics 提供传输层指标
//
// 两类指标：
//
//   - TransportMetrics：连接尝试结果计数、建立耗时分布、连接池大小，
//     以 Prometheus collector 形式导出
//   - BandwidthCounter：消息器收发字节的累计量与最近 60 秒速率，
//     按协议与远端逻辑地址分别统计
//
// # Fx 模块集成
//
//	app := fx.New(
//	    metrics.Module(),
//	    fx.Invoke(func(r metrics.Reporter) {
//	        stats := r.GetBandwidthTotals()
//	    }),
//	)
package metrics
