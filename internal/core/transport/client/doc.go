// Package client 实现 overlay 传输的出站连接客户端
//
// Client 把"连接到一个端点地址并拿到消息器"封装为一次带超时的阻塞调用：
//
//	地址解析 → 物理连接（连接超时）→ 欢迎消息交换（握手超时）→ 入池 → AsyncMessenger
//
// 任一阶段失败都会中止本次尝试，返回 nil 与对应的哨兵错误。
// 每次尝试拥有独立的 connRegistry，并发调用互不干扰，只共享连接池与连接工厂。
//
// # 生命周期
//
//	NotStarted --Start--> Started --BeginStop--> Stopping --Stop--> Stopped
//
// 状态单调推进。不满足前置状态的调用记录警告日志并返回错误，不改变状态。
//
// # 超时
//
// 连接超时（默认 5 秒）与握手超时（默认 15 秒）相互独立，
// GetMessenger 最长阻塞两者之和。ctx 取消等同于中断等待。
package client
