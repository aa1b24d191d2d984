// Package channel 提供物理连接的通用封装
//
// 包含三部分：
//   - Conn：包装 net.Conn，提供进程内唯一 ID 与关闭通知
//   - Future：出站连接的异步结果，成功与取消之间只有一方生效
//   - Group：连接池，支持并行批量关闭
//
// 各协议的连接工厂（tcp、quic、ws）在此基础上实现 ChannelFactory。
package channel
