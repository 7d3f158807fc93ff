package speaker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varesa/BGtraP/net"
	"github.com/varesa/BGtraP/packet"
)

func testUpdate(t *testing.T) *packet.BGPUpdate {
	path, err := packet.NewASPathAttr(packet.ASPath{
		{Type: packet.ASSequence, ASNs: []uint16{64512, 64513}},
	})
	require.NoError(t, err)

	return &packet.BGPUpdate{
		PathAttributes: []packet.PathAttribute{
			packet.NewOriginAttr(packet.IGP),
			path,
			packet.NewNextHopAttr(packet.IPv4Addr{192, 0, 2, 1}),
		},
		NLRI: []packet.Prefix{
			{Pfxlen: 8, Addr: packet.IPv4Addr{10, 0, 0, 0}},
			{Pfxlen: 16, Addr: packet.IPv4Addr{10, 1, 0, 0}},
		},
	}
}

func TestApplyUpdate(t *testing.T) {
	rt := NewRouteTable()

	announced, withdrawn := rt.ApplyUpdate("peer1", testUpdate(t))
	assert.Equal(t, 2, announced)
	assert.Equal(t, 0, withdrawn)
	assert.Equal(t, 2, rt.Len())

	r, ok := rt.Lookup(167837697) // 10.1.0.1
	require.True(t, ok)
	assert.Equal(t, net.NewPfx(167837696, 16), r.Prefix)
	assert.Equal(t, "peer1", r.Peer)
	assert.Equal(t, packet.IPv4Addr{192, 0, 2, 1}, r.NextHop)
	assert.Equal(t, "64512 64513", r.ASPath.String())
	assert.Len(t, r.Attrs, 3)

	r, ok = rt.Lookup(167903233) // 10.2.0.1
	require.True(t, ok)
	assert.Equal(t, net.NewPfx(167772160, 8), r.Prefix)

	_, ok = rt.Lookup(3221225985) // 192.0.2.1
	assert.False(t, ok)

	announced, withdrawn = rt.ApplyUpdate("peer1", &packet.BGPUpdate{
		WithdrawnRoutes: []packet.Prefix{
			{Pfxlen: 16, Addr: packet.IPv4Addr{10, 1, 0, 0}},
			{Pfxlen: 24, Addr: packet.IPv4Addr{198, 51, 100, 0}},
		},
	})
	assert.Equal(t, 0, announced)
	assert.Equal(t, 1, withdrawn)
	assert.Equal(t, 1, rt.Len())

	r, ok = rt.Lookup(167837697)
	require.True(t, ok)
	assert.Equal(t, net.NewPfx(167772160, 8), r.Prefix)
}

func TestWithdrawOtherPeer(t *testing.T) {
	rt := NewRouteTable()
	rt.ApplyUpdate("peer1", testUpdate(t))

	assert.False(t, rt.Withdraw("peer2", net.NewPfx(167772160, 8)))
	assert.True(t, rt.Withdraw("peer1", net.NewPfx(167772160, 8)))
	assert.Equal(t, 1, rt.Len())
}

func TestWithdrawPeer(t *testing.T) {
	rt := NewRouteTable()
	rt.ApplyUpdate("peer1", testUpdate(t))
	rt.Announce(&Route{
		Prefix: net.NewPfx(3221225984, 24), // 192.0.2.0/24
		Peer:   "peer2",
	})
	assert.Equal(t, 3, rt.Len())

	assert.Equal(t, 2, rt.WithdrawPeer("peer1"))
	assert.Equal(t, 0, rt.WithdrawPeer("peer1"))

	routes := rt.Routes()
	require.Len(t, routes, 1)
	assert.Equal(t, "peer2", routes[0].Peer)
}

func TestRoutesOrdered(t *testing.T) {
	rt := NewRouteTable()
	rt.Announce(&Route{Prefix: net.NewPfx(3221225984, 24), Peer: "a"}) // 192.0.2.0/24
	rt.Announce(&Route{Prefix: net.NewPfx(167772160, 16), Peer: "a"})  // 10.0.0.0/16
	rt.Announce(&Route{Prefix: net.NewPfx(167772160, 8), Peer: "b"})   // 10.0.0.0/8

	var res []string
	for _, r := range rt.Routes() {
		res = append(res, r.Prefix.String())
	}
	assert.Equal(t, []string{"10.0.0.0/8", "10.0.0.0/16", "192.0.2.0/24"}, res)
}
