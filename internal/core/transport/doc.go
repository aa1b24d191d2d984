// Package transport 组装出站传输
//
// 每种协议由一个 Binding 表示：连接工厂、地址转换器与监听函数。
// 协议实现通过 modulemanager.Builder 注册，按 config.TransportConfig.Protocol
// 选择其中之一：
//
//   - tcp: 明文 TCP（internal/core/transport/tcp）
//   - quic: QUIC 单流（internal/core/transport/quic）
//   - ws: WebSocket 二进制帧（internal/core/transport/ws）
//
// # 子包
//
//   - channel: 物理连接、连接 Future 与连接组
//   - wire: 欢迎帧与消息帧编解码
//   - handshake: 每条连接的握手流程与入站应答
//   - client: 传输客户端（连接池、生命周期、消息器）
//
// # Fx 模块集成
//
//	app := fx.New(
//	    fx.Supply(cfg),
//	    transport.Module(),
//	    fx.Invoke(func(f pkgif.ChannelFactory, t pkgif.AddressTranslator) {
//	        // 供 client.Module 使用
//	    }),
//	)
//
// 连接工厂的资源由客户端 Stop 释放，本模块不重复释放。
package transport
