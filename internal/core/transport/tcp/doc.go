// Package tcp 提供基于 TCP 的连接工厂
//
// TCP 是 overlay 传输的默认协议，地址形如 tcp://host:port。
// 工厂只负责建立字节流，握手与消息收发由上层完成。
package tcp
