// Package types 定义 overlay 传输层的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
//   - address.go  - EndpointAddress 端点地址（逻辑地址与物理端点地址）
//   - ids.go      - PeerID, PeerGroupID
//   - message.go  - Message, Element 消息模型
//   - events.go   - 消息器相关事件
//   - errors.go   - 公共错误定义
package types
