package types

import "sync"

// Element 消息元素
type Element struct {
	Namespace string
	Name      string
	MimeType  string
	Data      []byte
}

// Message 传输消息
//
// 由若干命名元素组成。源/目的地址在发送时由消息器填写，
// 接收方通过 Source/Destination 读取。
type Message struct {
	mu       sync.RWMutex
	elements []Element

	Source      EndpointAddress
	Destination EndpointAddress
}

// NewMessage 创建空消息
func NewMessage() *Message {
	return &Message{}
}

// AddElement 追加元素
func (m *Message) AddElement(e Element) {
	m.mu.Lock()
	m.elements = append(m.elements, e)
	m.mu.Unlock()
}

// AddString 以文本元素追加
func (m *Message) AddString(namespace, name, value string) {
	m.AddElement(Element{
		Namespace: namespace,
		Name:      name,
		MimeType:  "text/plain;charset=UTF-8",
		Data:      []byte(value),
	})
}

// Element 查找指定命名空间与名称的第一个元素
func (m *Message) Element(namespace, name string) (Element, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.elements {
		if e.Namespace == namespace && e.Name == name {
			return e, true
		}
	}
	return Element{}, false
}

// Elements 返回元素副本
func (m *Message) Elements() []Element {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Element, len(m.elements))
	copy(out, m.elements)
	return out
}

// Len 元素数量
func (m *Message) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.elements)
}
