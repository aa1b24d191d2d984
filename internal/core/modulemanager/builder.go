package modulemanager

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dep2p/go-overlay/pkg/lib/log"
)

var logger = log.Logger("core/modulemanager")

// Descriptor 模块描述符
type Descriptor string

// String 返回字符串表示
func (d Descriptor) String() string { return string(d) }

// Constructor 按描述符构造模块
type Constructor[T any] func(d Descriptor) (T, error)

// InitFunc 构建器初始化钩子
type InitFunc func() error

// ============================================================================
//                              事件
// ============================================================================

// EventType 构建器事件类型
type EventType int

const (
	// EventInitialised 描述符已随构建器完成初始化
	EventInitialised EventType = iota
	// EventBuilt 模块已构建
	EventBuilt
)

// String 返回事件类型字符串表示
func (t EventType) String() string {
	switch t {
	case EventInitialised:
		return "initialised"
	case EventBuilt:
		return "built"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Event 构建器事件
type Event struct {
	Builder    string
	Type       EventType
	Descriptor Descriptor
}

// Listener 构建器事件监听器
type Listener func(Event)

// ============================================================================
//                              Builder
// ============================================================================

// Builder 模块构建器
//
// 并发安全。监听器在锁外同步调用。
type Builder[T any] struct {
	name string

	mu           sync.RWMutex
	constructors map[Descriptor]Constructor[T]
	inits        []InitFunc
	initialised  bool
	listeners    map[int]Listener
	nextID       int
}

// NewBuilder 创建名为 name 的构建器
func NewBuilder[T any](name string) *Builder[T] {
	return &Builder[T]{
		name:         name,
		constructors: make(map[Descriptor]Constructor[T]),
		listeners:    make(map[int]Listener),
	}
}

// Name 构建器名称
func (b *Builder[T]) Name() string { return b.name }

// Register 注册描述符的构造函数
func (b *Builder[T]) Register(d Descriptor, c Constructor[T]) error {
	if d == "" {
		return ErrEmptyDescriptor
	}
	if c == nil {
		return ErrNilConstructor
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.constructors[d]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateDescriptor, d)
	}
	b.constructors[d] = c
	return nil
}

// Unregister 注销描述符
func (b *Builder[T]) Unregister(d Descriptor) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.constructors[d]; !exists {
		return fmt.Errorf("%w: %s", ErrUnsupportedDescriptor, d)
	}
	delete(b.constructors, d)
	return nil
}

// CanBuild 是否支持描述符
func (b *Builder[T]) CanBuild(d Descriptor) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.constructors[d]
	return ok
}

// SupportedDescriptors 返回已注册的描述符（有序）
func (b *Builder[T]) SupportedDescriptors() []Descriptor {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Descriptor, 0, len(b.constructors))
	for d := range b.constructors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// OnInitialise 添加初始化钩子，须在 Initialise 之前调用
func (b *Builder[T]) OnInitialise(f InitFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inits = append(b.inits, f)
}

// AddListener 添加事件监听器，返回移除函数
func (b *Builder[T]) AddListener(l Listener) (remove func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.listeners[id] = l
	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

// ============================================================================
//                              初始化与构建
// ============================================================================

// Initialise 运行初始化钩子
//
// 成功后对每个已注册描述符通知一次 EventInitialised。重复调用无效果。
// 钩子失败时构建器保持未初始化，可重试。
func (b *Builder[T]) Initialise() error {
	b.mu.Lock()
	if b.initialised {
		b.mu.Unlock()
		return nil
	}
	inits := append([]InitFunc(nil), b.inits...)
	b.mu.Unlock()

	for _, f := range inits {
		if err := f(); err != nil {
			return fmt.Errorf("initialise %s: %w", b.name, err)
		}
	}

	b.mu.Lock()
	if b.initialised {
		b.mu.Unlock()
		return nil
	}
	b.initialised = true
	b.mu.Unlock()

	for _, d := range b.SupportedDescriptors() {
		b.notify(Event{Builder: b.name, Type: EventInitialised, Descriptor: d})
	}
	logger.Debug("模块构建器已初始化", "builder", b.name)
	return nil
}

// IsInitialised 是否已初始化
func (b *Builder[T]) IsInitialised() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.initialised
}

// Build 按描述符构建模块
func (b *Builder[T]) Build(d Descriptor) (T, error) {
	var zero T

	b.mu.RLock()
	initialised := b.initialised
	c, ok := b.constructors[d]
	b.mu.RUnlock()

	if !initialised {
		return zero, ErrNotInitialised
	}
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrUnsupportedDescriptor, d)
	}

	m, err := c(d)
	if err != nil {
		return zero, fmt.Errorf("build %s/%s: %w", b.name, d, err)
	}

	b.notify(Event{Builder: b.name, Type: EventBuilt, Descriptor: d})
	logger.Debug("模块已构建", "builder", b.name, "descriptor", d.String())
	return m, nil
}

func (b *Builder[T]) notify(evt Event) {
	b.mu.RLock()
	ids := make([]int, 0, len(b.listeners))
	for id := range b.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	ls := make([]Listener, 0, len(ids))
	for _, id := range ids {
		ls = append(ls, b.listeners[id])
	}
	b.mu.RUnlock()

	for _, l := range ls {
		l(evt)
	}
}
