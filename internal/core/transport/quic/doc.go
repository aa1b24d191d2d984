// Package quic 提供基于 QUIC 的连接工厂
//
// 每个 overlay 连接对应一条 QUIC 连接上的一个双向流，地址形如 quic://host:port。
// 拨号与监听共享同一个 UDP socket（quic.Transport）。
package quic
