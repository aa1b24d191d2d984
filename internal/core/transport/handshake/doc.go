// Package handshake 实现连接建立后的欢迎消息交换
//
// 双方各发送一个欢迎帧，从对方的欢迎帧中学习其逻辑地址。
//
// 出站方向由 Pipeline 完成：作为 ChannelInitializer 安装到每次连接尝试，
// 握手成功时恰好回调一次；握手失败或连接在握手前断开时不回调，
// 由调用方的握手超时统一处理。
//
// 入站方向由 Responder 完成：接受连接、应答欢迎帧，并把握手完成的连接交给处理函数。
package handshake
