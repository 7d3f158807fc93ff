package speaker

import (
	"sync"

	"github.com/varesa/BGtraP/lpm"
	"github.com/varesa/BGtraP/net"
	"github.com/varesa/BGtraP/packet"
)

// Route is a prefix learned from a peer
type Route struct {
	Prefix  *net.Prefix
	Peer    string
	NextHop packet.IPv4Addr
	ASPath  packet.ASPath
	Attrs   []packet.PathAttribute
}

// RouteTable collects the routes of all sessions. Only one route is kept per
// prefix, the latest announcement wins.
type RouteTable struct {
	mu  sync.RWMutex
	lpm *lpm.LPM
}

// NewRouteTable creates an empty RouteTable
func NewRouteTable() *RouteTable {
	return &RouteTable{
		lpm: lpm.New(),
	}
}

// Announce adds or replaces the route for r.Prefix
func (rt *RouteTable) Announce(r *Route) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.lpm.Insert(r.Prefix, r)
}

// Withdraw removes the route for pfx if it was learned from peer
func (rt *RouteTable) Withdraw(peer string, pfx *net.Prefix) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	return rt.withdraw(peer, pfx)
}

func (rt *RouteTable) withdraw(peer string, pfx *net.Prefix) bool {
	v, ok := rt.lpm.Value(pfx)
	if !ok || v.(*Route).Peer != peer {
		return false
	}

	return rt.lpm.Remove(pfx)
}

// WithdrawPeer removes all routes learned from peer and returns how many
// were removed.
func (rt *RouteTable) WithdrawPeer(peer string) int {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	n := 0
	for _, pfx := range rt.lpm.Dump() {
		if rt.withdraw(peer, pfx) {
			n++
		}
	}
	return n
}

// ApplyUpdate processes the withdrawn routes of u first, then its NLRI
func (rt *RouteTable) ApplyUpdate(peer string, u *packet.BGPUpdate) (announced int, withdrawn int) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	for _, p := range u.WithdrawnRoutes {
		if rt.withdraw(peer, net.NewPfxFromPacket(p)) {
			withdrawn++
		}
	}

	if len(u.NLRI) == 0 {
		return 0, withdrawn
	}

	attrs := make([]packet.PathAttribute, len(u.PathAttributes))
	copy(attrs, u.PathAttributes)

	var nextHop packet.IPv4Addr
	var path packet.ASPath
	for i := range attrs {
		switch attrs[i].TypeCode {
		case packet.NextHopAttr:
			nextHop, _ = attrs[i].NextHop()
		case packet.ASPathAttr:
			path, _ = attrs[i].ASPath()
		}
	}

	for _, p := range u.NLRI {
		pfx := net.NewPfxFromPacket(p)
		rt.lpm.Insert(pfx, &Route{
			Prefix:  pfx,
			Peer:    peer,
			NextHop: nextHop,
			ASPath:  path,
			Attrs:   attrs,
		})
		announced++
	}

	return announced, withdrawn
}

// Lookup returns the most specific route covering addr
func (rt *RouteTable) Lookup(addr uint32) (*Route, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	_, v, ok := rt.lpm.Lookup(addr)
	if !ok {
		return nil, false
	}
	return v.(*Route), true
}

// Routes returns all routes ordered by prefix
func (rt *RouteTable) Routes() []*Route {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	pfxs := rt.lpm.Dump()
	res := make([]*Route, 0, len(pfxs))
	for _, pfx := range pfxs {
		v, _ := rt.lpm.Value(pfx)
		res = append(res, v.(*Route))
	}
	return res
}

// Len returns the number of routes
func (rt *RouteTable) Len() int {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	return int(rt.lpm.Count())
}
