package metrics

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-overlay/pkg/types"
)

// ============================================================================
// RateMeter
// ============================================================================

func TestRateMeter_Window(t *testing.T) {
	clk := clock.NewMock()
	r := NewRateMeter(clk)

	r.Add(600)
	assert.InDelta(t, 10.0, r.Rate(), 0.001)

	clk.Add(30 * time.Second)
	r.Add(600)
	assert.InDelta(t, 20.0, r.Rate(), 0.001)

	// 第一个桶滑出窗口
	clk.Add(31 * time.Second)
	assert.InDelta(t, 10.0, r.Rate(), 0.001)

	clk.Add(2 * time.Minute)
	assert.Zero(t, r.Rate())
}

// ============================================================================
// BandwidthCounter
// ============================================================================

func TestBandwidthCounter(t *testing.T) {
	var r Reporter = NewBandwidthCounter(clock.NewMock())

	peer1 := types.NewPeerID().EndpointAddress()
	peer2 := types.NewPeerID().EndpointAddress()

	r.LogSentMessage(100, "tcp", peer1)
	r.LogSentMessage(200, "quic", peer2)
	r.LogRecvMessage(50, "tcp", peer1)

	totals := r.GetBandwidthTotals()
	assert.Equal(t, int64(300), totals.TotalOut)
	assert.Equal(t, int64(50), totals.TotalIn)

	assert.Equal(t, int64(100), r.GetBandwidthForProtocol("tcp").TotalOut)
	assert.Equal(t, int64(50), r.GetBandwidthForPeer(peer1).TotalIn)
	assert.Equal(t, Stats{}, r.GetBandwidthForPeer(types.NewPeerID().EndpointAddress()))

	byPeer := r.GetBandwidthByPeer()
	require.Len(t, byPeer, 2)
	assert.Equal(t, int64(200), byPeer[peer2.String()].TotalOut)

	r.Reset()
	assert.Equal(t, Stats{}, r.GetBandwidthTotals())
	assert.Empty(t, r.GetBandwidthByPeer())
}

// ============================================================================
// TransportMetrics
// ============================================================================

func TestTransportMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewTransportMetrics(reg, "overlay", "tcp")

	m.ObserveAttempt(OutcomeSuccess, 20*time.Millisecond)
	m.ObserveAttempt(OutcomeConnectTimeout, 5*time.Second)
	m.ObserveAttempt(OutcomeConnectTimeout, 5*time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Attempts(OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Attempts(OutcomeConnectTimeout)))

	// 同一注册表上的第二个实例复用已有 collector
	again := NewTransportMetrics(reg, "overlay", "tcp")
	again.ObserveAttempt(OutcomeSuccess, time.Millisecond)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Attempts(OutcomeSuccess)))
}

func TestRegisterPoolGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	size := 3
	RegisterPoolGauge(reg, "overlay", "tcp", func() int { return size })

	n, err := testutil.GatherAndCount(reg, "overlay_transport_client_pooled_channels")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// nil 注册表不应 panic
	RegisterPoolGauge(nil, "overlay", "tcp", func() int { return 0 })
}

func TestModule(t *testing.T) {
	var (
		r   Reporter
		reg prometheus.Registerer
		g   prometheus.Gatherer
	)
	app := fxtest.New(t, Module(), fx.Populate(&r, &reg, &g))
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, r)
	assert.Same(t, reg, g)
}
