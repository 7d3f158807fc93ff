package lpm

import (
	"github.com/varesa/BGtraP/net"
)

// LPM is a binary trie of IPv4 prefixes. Every prefix carries an opaque
// value. LPM is not safe for concurrent use.
type LPM struct {
	root  *node
	count uint64
}

type node struct {
	dummy bool
	pfx   *net.Prefix
	val   interface{}
	l     *node
	h     *node
}

// New creates a new empty LPM
func New() *LPM {
	return &LPM{}
}

func newNode(pfx *net.Prefix, dummy bool) *node {
	return &node{
		pfx:   pfx,
		dummy: dummy,
	}
}

// Count returns the number of prefixes in lpm
func (lpm *LPM) Count() uint64 {
	return lpm.count
}

// LPM returns all prefixes of lpm covering pfx, least specific first
func (lpm *LPM) LPM(pfx *net.Prefix) (res []*net.Prefix) {
	lpm.walk(pfx, func(n *node) {
		res = append(res, n.pfx)
	})
	return res
}

// Lookup finds the longest prefix containing addr
func (lpm *LPM) Lookup(addr uint32) (pfx *net.Prefix, val interface{}, ok bool) {
	lpm.walk(net.NewPfx(addr, 32), func(n *node) {
		pfx, val, ok = n.pfx, n.val, true
	})
	return pfx, val, ok
}

// walk calls fn for every non dummy node on the path towards pfx
func (lpm *LPM) walk(pfx *net.Prefix, fn func(n *node)) {
	n := lpm.root
	for depth := uint8(0); n != nil; depth++ {
		if !n.dummy {
			fn(n)
		}

		if depth == pfx.Pfxlen() {
			return
		}
		n = *n.child(pfx.Addr(), depth)
	}
}

// Get get's prefix pfx from the LPM. With moreSpecifics set all prefixes
// inside of pfx are returned as well.
func (lpm *LPM) Get(pfx *net.Prefix, moreSpecifics bool) (res []*net.Prefix) {
	node := lpm.root.get(pfx, 0)
	if moreSpecifics {
		return node.dumpPfxs(res)
	}

	if node == nil || node.dummy {
		return nil
	}

	return []*net.Prefix{
		node.pfx,
	}
}

// Value returns the value stored for pfx
func (lpm *LPM) Value(pfx *net.Prefix) (interface{}, bool) {
	node := lpm.root.get(pfx, 0)
	if node == nil || node.dummy {
		return nil, false
	}
	return node.val, true
}

// Dump returns all prefixes of lpm ordered by address and length
func (lpm *LPM) Dump() []*net.Prefix {
	return lpm.root.dumpPfxs(nil)
}

// Insert inserts a route into the LPM. An existing value for pfx is replaced.
func (lpm *LPM) Insert(pfx *net.Prefix, val interface{}) {
	if lpm.root == nil {
		lpm.root = newNode(net.NewPfx(0, 0), true)
	}

	n := lpm.root
	for depth := uint8(0); depth < pfx.Pfxlen(); depth++ {
		c := n.child(pfx.Addr(), depth)
		if *c == nil {
			*c = newNode(net.NewPfx(pfx.Addr(), depth+1), true)
		}
		n = *c
	}

	if n.dummy {
		lpm.count++
	}
	n.dummy = false
	n.val = val
}

// Remove removes pfx from the LPM. It returns false if pfx was not present.
func (lpm *LPM) Remove(pfx *net.Prefix) bool {
	if lpm.root == nil || !lpm.root.remove(pfx, 0) {
		return false
	}

	lpm.count--
	if lpm.root.leaf() {
		lpm.root = nil
	}
	return true
}

func (n *node) child(addr uint32, depth uint8) **node {
	if getBitUint32(addr, depth+1) {
		return &n.h
	}
	return &n.l
}

func (n *node) leaf() bool {
	return n.dummy && n.l == nil && n.h == nil
}

func (n *node) get(pfx *net.Prefix, depth uint8) *node {
	for ; n != nil; depth++ {
		if depth == pfx.Pfxlen() {
			return n
		}
		n = *n.child(pfx.Addr(), depth)
	}
	return nil
}

func (n *node) remove(pfx *net.Prefix, depth uint8) bool {
	if depth == pfx.Pfxlen() {
		if n.dummy {
			return false
		}
		n.dummy = true
		n.val = nil
		return true
	}

	c := n.child(pfx.Addr(), depth)
	if *c == nil || !(*c).remove(pfx, depth+1) {
		return false
	}

	if (*c).leaf() {
		*c = nil
	}
	return true
}

func (n *node) dumpPfxs(res []*net.Prefix) []*net.Prefix {
	if n == nil {
		return res
	}

	if !n.dummy {
		res = append(res, n.pfx)
	}

	res = n.l.dumpPfxs(res)
	return n.h.dumpPfxs(res)
}

func getBitUint32(x uint32, pos uint8) bool {
	return ((x) & (1 << (32 - pos))) != 0
}
