package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgif "github.com/dep2p/go-overlay/pkg/interfaces"
)

type testEvent struct {
	Value int
}

func TestBus_SubscribeEmit(t *testing.T) {
	bus := NewBus()

	sub, err := bus.Subscribe(new(testEvent))
	require.NoError(t, err)
	defer sub.Close()

	em, err := bus.Emitter(new(testEvent))
	require.NoError(t, err)
	defer em.Close()

	require.NoError(t, em.Emit(&testEvent{Value: 7}))

	evt := <-sub.Out()
	assert.Equal(t, 7, evt.(*testEvent).Value)
}

func TestBus_RejectsNonPointer(t *testing.T) {
	bus := NewBus()

	_, err := bus.Subscribe(testEvent{})
	assert.ErrorIs(t, err, ErrNonPointerType)

	_, err = bus.Emitter(nil)
	assert.ErrorIs(t, err, ErrInvalidEventType)
}

func TestBus_DropsWhenBufferFull(t *testing.T) {
	bus := NewBus()

	sub, err := bus.Subscribe(new(testEvent), pkgif.BufSize(1))
	require.NoError(t, err)
	defer sub.Close()

	em, err := bus.Emitter(new(testEvent))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, em.Emit(&testEvent{Value: i}))
	}

	assert.Equal(t, int64(2), bus.Dropped(new(testEvent)))
	assert.Equal(t, 0, (<-sub.Out()).(*testEvent).Value)
}

func TestBus_StatefulReplaysLast(t *testing.T) {
	bus := NewBus()

	em, err := bus.Emitter(new(testEvent), pkgif.Stateful())
	require.NoError(t, err)
	require.NoError(t, em.Emit(&testEvent{Value: 42}))

	sub, err := bus.Subscribe(new(testEvent))
	require.NoError(t, err)
	defer sub.Close()

	assert.Equal(t, 42, (<-sub.Out()).(*testEvent).Value)
}

func TestSubscription_CloseStopsDelivery(t *testing.T) {
	bus := NewBus()

	sub, err := bus.Subscribe(new(testEvent))
	require.NoError(t, err)
	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	em, err := bus.Emitter(new(testEvent))
	require.NoError(t, err)
	require.NoError(t, em.Emit(&testEvent{Value: 1}))

	_, ok := <-sub.Out()
	assert.False(t, ok)
}

func TestEmitter_Closed(t *testing.T) {
	bus := NewBus()
	em, err := bus.Emitter(new(testEvent))
	require.NoError(t, err)
	require.NoError(t, em.Close())
	assert.ErrorIs(t, em.Emit(&testEvent{}), ErrEmitterClosed)
}
