// Package mocks 提供统一的测试 Mock 实现
//
// # 传输 Mock
//
//   - MockChannelFactory: 模拟 interfaces.ChannelFactory，记录连接与释放调用
//   - MockTranslator: 模拟 interfaces.AddressTranslator
//
// # 端点 Mock
//
//   - MockEndpointService: 模拟 interfaces.EndpointService，记录注册、入站消息与发送失败
//   - MockMessengerListener: 模拟 interfaces.MessengerEventListener
//
// # 设计原则
//
// 1. 函数式注入: 每个 Mock 都支持通过 XxxFunc 字段注入自定义行为
// 2. 调用记录: 关键 Mock 记录调用历史，便于验证测试行为
//
// # 使用示例
//
//	factory := &mocks.MockChannelFactory{
//	    ConnectFunc: func(ctx context.Context, addr net.Addr, init interfaces.ChannelInitializer) interfaces.ConnectFuture {
//	        fut := channel.NewFuture(nil)
//	        fut.Fail(errors.New("connection refused"))
//	        return fut
//	    },
//	}
package mocks
