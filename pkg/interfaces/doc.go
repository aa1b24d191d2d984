// Package interfaces 定义 overlay 传输层的公共接口
//
// 一个接口文件对应一个实现目录：
//   - transport.go - 物理连接能力（AddressTranslator, ChannelFactory, Channel）
//   - endpoint.go  - 端点服务与消息传输注册
//   - messenger.go - 异步消息器
//   - eventbus.go  - 事件总线
package interfaces
