// Package endpoint 实现端点服务
//
// 端点服务是消息传输与上层服务之间的汇合点：
//
//   - 传输通过 AddMessageTransport 注册，得到一个 MessengerEventListener
//   - 传输建立的消息器通过监听器交回端点服务，并以 EvtMessengerReady 广播
//   - 入站消息按目的地址的 service/param 分发给注册的 MessageListener
//   - 消息器异步发送失败经 ReportSendFailure 以 EvtSendFailed 广播
//
// 路由策略不在此实现：Messenger 只按协议名选择传输，优先复用仍然存活的消息器。
//
// # Fx 模块集成
//
//	app := fx.New(
//	    eventbus.Module(),
//	    endpoint.Module(),
//	    fx.Invoke(func(svc *endpoint.Service) { ... }),
//	)
package endpoint
