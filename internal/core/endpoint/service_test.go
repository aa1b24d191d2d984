package endpoint

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-overlay/internal/core/eventbus"
	pkgif "github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/types"
)

// ============================================================================
//                              测试替身
// ============================================================================

type fakeSender struct {
	protocol string
	public   types.EndpointAddress

	GetMessengerFunc func(ctx context.Context, dest types.EndpointAddress) (pkgif.Messenger, error)

	mu    sync.Mutex
	calls int
}

func (f *fakeSender) ProtocolName() string                   { return f.protocol }
func (f *fakeSender) PublicAddress() types.EndpointAddress   { return f.public }
func (f *fakeSender) EndpointService() pkgif.EndpointService { return nil }
func (f *fakeSender) AllowsRouting() bool                    { return true }
func (f *fakeSender) IsConnectionOriented() bool             { return true }

func (f *fakeSender) GetMessenger(ctx context.Context, dest types.EndpointAddress) (pkgif.Messenger, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.GetMessengerFunc != nil {
		return f.GetMessengerFunc(ctx, dest)
	}
	return newFakeMessenger(dest, types.NewPeerID().EndpointAddress()), nil
}

func (f *fakeSender) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// receiveOnly 只实现 MessageTransport，不能主动连接
type receiveOnly struct{ protocol string }

func (r receiveOnly) ProtocolName() string                   { return r.protocol }
func (r receiveOnly) PublicAddress() types.EndpointAddress   { return types.EndpointAddress{} }
func (r receiveOnly) EndpointService() pkgif.EndpointService { return nil }

type fakeMessenger struct {
	dest, logical types.EndpointAddress
	once          sync.Once
	done          chan struct{}
}

func newFakeMessenger(dest, logical types.EndpointAddress) *fakeMessenger {
	return &fakeMessenger{dest: dest.Base(), logical: logical, done: make(chan struct{})}
}

func (m *fakeMessenger) Send(*types.Message, string, string) error        { return nil }
func (m *fakeMessenger) LocalAddress() types.EndpointAddress              { return types.EndpointAddress{} }
func (m *fakeMessenger) DestinationAddress() types.EndpointAddress        { return m.dest }
func (m *fakeMessenger) LogicalDestinationAddress() types.EndpointAddress { return m.logical }
func (m *fakeMessenger) RemoteSocketAddress() net.Addr                    { return nil }
func (m *fakeMessenger) IsConnectionOriented() bool                       { return true }
func (m *fakeMessenger) Done() <-chan struct{}                            { return m.done }

func (m *fakeMessenger) IsClosed() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}

func (m *fakeMessenger) Close() error {
	m.once.Do(func() { close(m.done) })
	return nil
}

func newService(t *testing.T) (*Service, pkgif.EventBus) {
	t.Helper()
	bus := eventbus.NewBus()
	svc, err := NewService(types.NetGroupID, bus)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc, bus
}

// ============================================================================
//                              传输注册
// ============================================================================

func TestNewService_RequiresBus(t *testing.T) {
	_, err := NewService(types.NetGroupID, nil)
	assert.ErrorIs(t, err, ErrNilEventBus)
}

func TestService_AddMessageTransport(t *testing.T) {
	svc, _ := newService(t)
	tcp := &fakeSender{protocol: "tcp"}

	l := svc.AddMessageTransport(tcp)
	require.NotNil(t, l)
	assert.Same(t, tcp, svc.Transports().TransportForProtocol("tcp"))

	// 同协议重复注册被拒绝
	assert.Nil(t, svc.AddMessageTransport(&fakeSender{protocol: "tcp"}))
	// 无协议名被拒绝
	assert.Nil(t, svc.AddMessageTransport(&fakeSender{}))

	require.NotNil(t, svc.AddMessageTransport(&fakeSender{protocol: "quic"}))
	assert.Equal(t, []string{"quic", "tcp"}, svc.Transports().Protocols())

	// 只有注册的那个实例可以注销
	assert.False(t, svc.RemoveMessageTransport(&fakeSender{protocol: "tcp"}))
	assert.True(t, svc.RemoveMessageTransport(tcp))
	assert.False(t, svc.RemoveMessageTransport(tcp))
	assert.Equal(t, []string{"quic"}, svc.Transports().Protocols())
}

func TestService_RefusesAfterClose(t *testing.T) {
	svc, _ := newService(t)
	require.NoError(t, svc.Close())
	require.NoError(t, svc.Close())

	assert.Nil(t, svc.AddMessageTransport(&fakeSender{protocol: "tcp"}))
	_, err := svc.Messenger(context.Background(), types.MustParseEndpointAddress("tcp://127.0.0.1:1"))
	assert.ErrorIs(t, err, ErrServiceClosed)
}

// ============================================================================
//                              消息器
// ============================================================================

func TestService_MessengerReadyEmitsEvent(t *testing.T) {
	svc, bus := newService(t)
	sub, err := bus.Subscribe(new(types.EvtMessengerReady))
	require.NoError(t, err)
	defer sub.Close()

	l := svc.AddMessageTransport(&fakeSender{protocol: "tcp"})
	require.NotNil(t, l)

	dest := types.MustParseEndpointAddress("tcp://10.0.0.1:9701")
	logical := types.NewPeerID().EndpointAddress()
	m := newFakeMessenger(dest, logical)
	assert.True(t, l.MessengerReady(&types.EvtMessengerReady{
		Protocol:       "tcp",
		Direction:      types.DirOutbound,
		RemoteAddress:  dest,
		LogicalAddress: logical,
	}, m))

	select {
	case e := <-sub.Out():
		evt := e.(*types.EvtMessengerReady)
		assert.Equal(t, logical, evt.LogicalAddress)
		assert.False(t, evt.Time.IsZero())
	case <-time.After(time.Second):
		t.Fatal("no messenger ready event")
	}

	assert.False(t, l.MessengerReady(nil, m))
}

func TestService_MessengerReusesLiveMessenger(t *testing.T) {
	svc, _ := newService(t)
	sender := &fakeSender{protocol: "tcp"}
	l := svc.AddMessageTransport(sender)
	require.NotNil(t, l)

	dest := types.MustParseEndpointAddress("tcp://10.0.0.1:9701")
	logical := types.NewPeerID().EndpointAddress()
	live := newFakeMessenger(dest, logical)
	require.True(t, l.MessengerReady(&types.EvtMessengerReady{}, live))

	// 物理地址与逻辑地址都命中缓存
	got, err := svc.Messenger(context.Background(), dest.WithService("svc", "p"))
	require.NoError(t, err)
	assert.Same(t, live, got)
	got, err = svc.Messenger(context.Background(), logical)
	require.NoError(t, err)
	assert.Same(t, live, got)
	assert.Zero(t, sender.callCount())

	// 失效后由传输重新建立
	require.NoError(t, live.Close())
	require.Eventually(t, func() bool {
		m, err := svc.Messenger(context.Background(), dest)
		return err == nil && m != live
	}, time.Second, 5*time.Millisecond)
	assert.Positive(t, sender.callCount())
}

func TestService_MessengerSelectsTransportByProtocol(t *testing.T) {
	svc, _ := newService(t)
	cause := errors.New("connect timeout")
	quic := &fakeSender{
		protocol: "quic",
		GetMessengerFunc: func(context.Context, types.EndpointAddress) (pkgif.Messenger, error) {
			return nil, cause
		},
	}
	require.NotNil(t, svc.AddMessageTransport(quic))
	require.NotNil(t, svc.AddMessageTransport(receiveOnly{protocol: "ws"}))

	_, err := svc.Messenger(context.Background(), types.MustParseEndpointAddress("quic://10.0.0.1:9701"))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, quic.callCount())

	_, err = svc.Messenger(context.Background(), types.MustParseEndpointAddress("tcp://10.0.0.1:9701"))
	assert.ErrorIs(t, err, ErrNoTransport)

	_, err = svc.Messenger(context.Background(), types.MustParseEndpointAddress("ws://10.0.0.1:9701"))
	assert.ErrorIs(t, err, ErrNoTransport)
}

func TestService_ReportSendFailure(t *testing.T) {
	svc, bus := newService(t)
	sub, err := bus.Subscribe(new(types.EvtSendFailed))
	require.NoError(t, err)
	defer sub.Close()

	dst := types.NewPeerID().EndpointAddress().WithService("svc", "p")
	msg := types.NewMessage()
	cause := errors.New("broken pipe")
	svc.ReportSendFailure(dst, msg, cause)

	select {
	case e := <-sub.Out():
		evt := e.(*types.EvtSendFailed)
		assert.Equal(t, dst, evt.Destination)
		assert.Same(t, msg, evt.Message)
		assert.ErrorIs(t, evt.Err, cause)
	case <-time.After(time.Second):
		t.Fatal("no send failed event")
	}
}

// ============================================================================
//                              入站分发
// ============================================================================

func TestService_ProcessIncomingMessage(t *testing.T) {
	svc, _ := newService(t)

	var exact, wildcard []types.EndpointAddress
	require.True(t, svc.AddIncomingMessageListener("Echo", "p1",
		pkgif.MessageListenerFunc(func(_ *types.Message, _, dst types.EndpointAddress) { exact = append(exact, dst) })))
	require.True(t, svc.AddIncomingMessageListener("Echo", "",
		pkgif.MessageListenerFunc(func(_ *types.Message, _, dst types.EndpointAddress) { wildcard = append(wildcard, dst) })))
	assert.False(t, svc.AddIncomingMessageListener("Echo", "p1", pkgif.MessageListenerFunc(nil)))

	local := types.NewPeerID().EndpointAddress()
	src := types.NewPeerID().EndpointAddress()
	svc.ProcessIncomingMessage(types.NewMessage(), src, local.WithService("Echo", "p1"))
	svc.ProcessIncomingMessage(types.NewMessage(), src, local.WithService("Echo", "other"))
	svc.ProcessIncomingMessage(types.NewMessage(), src, local.WithService("Unknown", ""))

	assert.Len(t, exact, 1)
	assert.Len(t, wildcard, 1)
	assert.Equal(t, int64(1), svc.Dropped())

	assert.NotNil(t, svc.RemoveIncomingMessageListener("Echo", "p1"))
	svc.ProcessIncomingMessage(types.NewMessage(), src, local.WithService("Echo", "p1"))
	assert.Len(t, exact, 1)
	assert.Len(t, wildcard, 2)
}

// ============================================================================
//                              Fx 模块
// ============================================================================

func TestModule(t *testing.T) {
	var (
		svc *Service
		ep  pkgif.EndpointService
	)
	app := fxtest.New(t,
		eventbus.Module(),
		fx.Supply(types.NetGroupID),
		Module(),
		fx.Populate(&svc, &ep),
	)
	app.RequireStart()
	assert.Same(t, svc, ep)
	assert.Equal(t, types.NetGroupID, ep.GroupID())
	require.NotNil(t, svc.AddMessageTransport(&fakeSender{protocol: "tcp"}))

	app.RequireStop()
	assert.Nil(t, svc.AddMessageTransport(&fakeSender{protocol: "quic"}))
}
