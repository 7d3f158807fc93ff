package net

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/varesa/BGtraP/packet"
)

// Prefix represents an IPv4 prefix
type Prefix struct {
	addr   uint32
	pfxlen uint8
}

// NewPfx creates a new Prefix. Address bits beyond pfxlen are cleared.
func NewPfx(addr uint32, pfxlen uint8) *Prefix {
	if pfxlen > 32 {
		pfxlen = 32
	}

	return &Prefix{
		addr:   addr & mask(pfxlen),
		pfxlen: pfxlen,
	}
}

// NewPfxFromPacket converts a prefix read off the wire
func NewPfxFromPacket(p packet.Prefix) *Prefix {
	return NewPfx(p.Uint32(), p.Pfxlen)
}

// Addr returns the address of the prefix
func (pfx *Prefix) Addr() uint32 {
	return pfx.addr
}

// Pfxlen returns the length of the prefix
func (pfx *Prefix) Pfxlen() uint8 {
	return pfx.pfxlen
}

// Packet converts pfx into its wire representation
func (pfx *Prefix) Packet() packet.Prefix {
	p := packet.Prefix{
		Pfxlen: pfx.pfxlen,
	}
	binary.BigEndian.PutUint32(p.Addr[:], pfx.addr)
	return p
}

// String returns a string representation of pfx
func (pfx *Prefix) String() string {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, pfx.addr)
	return fmt.Sprintf("%s/%d", net.IP(b), pfx.pfxlen)
}

// Contains checks if x is a subnet of or equal to pfx
func (pfx *Prefix) Contains(x *Prefix) bool {
	if x.pfxlen < pfx.pfxlen {
		return false
	}

	m := mask(pfx.pfxlen)
	return (pfx.addr & m) == (x.addr & m)
}

// ContainsAddr checks if addr is part of pfx
func (pfx *Prefix) ContainsAddr(addr uint32) bool {
	return pfx.Contains(&Prefix{addr: addr, pfxlen: 32})
}

// Equal checks if pfx and x are equal
func (pfx *Prefix) Equal(x *Prefix) bool {
	return *pfx == *x
}

// GetSupernet gets the longest common supernet of pfx and x
func (pfx *Prefix) GetSupernet(x *Prefix) *Prefix {
	l := min(pfx.pfxlen, x.pfxlen)
	for l > 0 && (pfx.addr&mask(l)) != (x.addr&mask(l)) {
		l--
	}

	return NewPfx(pfx.addr, l)
}

func mask(pfxlen uint8) uint32 {
	if pfxlen == 0 {
		return 0
	}
	return ^uint32(0) << (32 - pfxlen)
}
