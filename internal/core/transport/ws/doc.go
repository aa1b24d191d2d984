// Package ws 提供基于 WebSocket 的连接工厂
//
// 地址形如 ws://host:port，升级路径由配置决定（默认 /overlay）。
// 每条 WebSocket 连接承载一个 overlay 字节流，数据以二进制消息传输。
package ws
