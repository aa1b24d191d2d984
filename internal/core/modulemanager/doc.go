// Package modulemanager 提供按描述符构建模块的注册表
//
// Builder 把描述符映射到构造函数：
//
//	b := modulemanager.NewBuilder[transport.Binding]("transport")
//	_ = b.Register("tcp", newTCP)
//	_ = b.Initialise()
//	binding, err := b.Build("tcp")
//
// 初始化与每次成功构建都会以 Event 通知已添加的监听器。
package modulemanager
