package routeadv

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-overlay/pkg/types"
)

func peerAdvXML(peer types.PeerID, services string) []byte {
	return []byte(fmt.Sprintf(`<?xml version="1.0"?>
<PeerAdvertisement>
  <PID>%s</PID>
  <GID>%s</GID>
  <Name>node-a</Name>
  %s
</PeerAdvertisement>`, peer, types.NetGroupID, services))
}

func endpointSvc(inner string) string {
	return fmt.Sprintf(`<Svc><MCID>%s</MCID><Parm>%s</Parm></Svc>`, EndpointServiceClassID, inner)
}

const routeNoPeer = `
<RouteAdvertisement>
  <Dst>
    <EA>tcp://10.0.0.1:9701</EA>
    <EA>quic://10.0.0.1:9702</EA>
    <EA>not an address</EA>
  </Dst>
  <Hops>
    <APA><PID>urn:overlay:peer-relay</PID><EA>tcp://10.0.0.9:9701</EA></APA>
  </Hops>
</RouteAdvertisement>`

// ============================================================================
//                              路由提取
// ============================================================================

func TestExtractRouteAdv_NoEndpointParam(t *testing.T) {
	peer := types.NewPeerID()
	other := `<Svc><MCID>urn:overlay:service:discovery</MCID><Parm>` + routeNoPeer + `</Parm></Svc>`

	adv, err := ParsePeerAdvertisement(peerAdvXML(peer, other))
	require.NoError(t, err)
	assert.Nil(t, ExtractRouteAdv(adv))
	assert.Nil(t, ExtractRouteAdv(nil))
}

func TestExtractRouteAdv_NoRouteInParam(t *testing.T) {
	adv, err := ParsePeerAdvertisement(peerAdvXML(types.NewPeerID(), endpointSvc(`<Other><X>1</X></Other>`)))
	require.NoError(t, err)
	assert.Nil(t, ExtractRouteAdv(adv))
}

func TestExtractRouteAdv_FillsPeerID(t *testing.T) {
	peer := types.NewPeerID()
	adv, err := ParsePeerAdvertisement(peerAdvXML(peer, endpointSvc(`<Other/>`+routeNoPeer)))
	require.NoError(t, err)
	assert.Equal(t, peer, adv.PeerID)
	assert.Equal(t, types.NetGroupID, adv.GroupID)

	route := ExtractRouteAdv(adv)
	require.NotNil(t, route)
	assert.Equal(t, peer, route.DestPeerID)
	assert.Equal(t, []types.EndpointAddress{
		types.MustParseEndpointAddress("tcp://10.0.0.1:9701"),
		types.MustParseEndpointAddress("quic://10.0.0.1:9702"),
	}, route.Dest.Endpoints())
	require.Len(t, route.Hops, 1)
	assert.Equal(t, types.PeerID("urn:overlay:peer-relay"), route.Hops[0].PeerID)
}

func TestExtractRouteAdv_OverridesEmbeddedPeerID(t *testing.T) {
	peer := types.NewPeerID()
	route := `<RouteAdvertisement><DstPID>urn:overlay:peer-stale</DstPID><Dst><EA>tcp://10.0.0.1:9701</EA></Dst></RouteAdvertisement>`

	got := ExtractRouteAdvXML(peerAdvXML(peer, endpointSvc(route)))
	require.NotNil(t, got)
	assert.Equal(t, peer, got.DestPeerID)
}

func TestExtractRouteAdvXML_Malformed(t *testing.T) {
	docs := map[string][]byte{
		"empty":      nil,
		"not xml":    []byte("PeerAdvertisement"),
		"unclosed":   []byte(`<PeerAdvertisement><PID>urn:overlay:peer-x</PID><Svc><MCID>` + EndpointServiceClassID + `</MCID><Parm><RouteAdvertisement>`),
		"wrong root": []byte(`<RouteAdvertisement><Dst/></RouteAdvertisement>`),
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			assert.Nil(t, ExtractRouteAdvXML(doc))
		})
	}

	_, err := ParsePeerAdvertisement([]byte("<"))
	assert.ErrorIs(t, err, ErrMalformedAdvertisement)
}

// ============================================================================
//                              缓存
// ============================================================================

func TestNewCache_InvalidSize(t *testing.T) {
	_, err := NewCache(0)
	assert.ErrorIs(t, err, ErrInvalidCacheSize)
}

func TestCache(t *testing.T) {
	c, err := NewCache(2)
	require.NoError(t, err)

	a, b, d := types.NewPeerID(), types.NewPeerID(), types.NewPeerID()

	advA, err := ParsePeerAdvertisement(peerAdvXML(a, endpointSvc(routeNoPeer)))
	require.NoError(t, err)
	assert.True(t, c.AddFromPeerAdv(advA))

	advNone, err := ParsePeerAdvertisement(peerAdvXML(d, ""))
	require.NoError(t, err)
	assert.False(t, c.AddFromPeerAdv(advNone))
	assert.False(t, c.Put(&RouteAdvertisement{}))
	assert.False(t, c.Put(nil))

	got, ok := c.Get(a)
	require.True(t, ok)
	assert.Equal(t, a, got.DestPeerID)

	// a 最近被访问，淘汰 b
	assert.True(t, c.Put(&RouteAdvertisement{DestPeerID: b}))
	_, _ = c.Get(a)
	assert.True(t, c.Put(&RouteAdvertisement{DestPeerID: d}))
	assert.Equal(t, 2, c.Len())
	_, ok = c.Get(b)
	assert.False(t, ok)

	assert.True(t, c.Remove(a))
	assert.False(t, c.Remove(a))
	assert.Equal(t, 1, c.Len())
}
