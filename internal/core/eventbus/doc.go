// Package eventbus 实现进程内事件总线
//
// 按事件类型分发，Emit 不阻塞：订阅者缓冲区满时事件被丢弃并计数。
// 端点服务用它上报消息器就绪与异步发送失败：
//
//	sub, _ := bus.Subscribe(new(types.EvtSendFailed))
//	for evt := range sub.Out() {
//	    e := evt.(*types.EvtSendFailed)
//	}
package eventbus
