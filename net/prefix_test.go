package net

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/varesa/BGtraP/packet"
)

func TestNewPfx(t *testing.T) {
	p := NewPfx(167772415, 8) // 10.0.0.255/8
	assert.Equal(t, uint32(167772160), p.Addr())
	assert.Equal(t, uint8(8), p.Pfxlen())

	p = NewPfx(167772415, 0)
	assert.Equal(t, uint32(0), p.Addr())
}

func TestContains(t *testing.T) {
	tests := []struct {
		name     string
		a        *Prefix
		b        *Prefix
		expected bool
	}{
		{
			name:     "Test 1",
			a:        NewPfx(0, 0),
			b:        NewPfx(100, 24),
			expected: true,
		},
		{
			name:     "Test 2",
			a:        NewPfx(100, 24),
			b:        NewPfx(0, 0),
			expected: false,
		},
		{
			name:     "Test 3",
			a:        NewPfx(167772160, 8),  // 10.0.0.0/8
			b:        NewPfx(167772160, 12), // 10.0.0.0/12
			expected: true,
		},
		{
			name:     "Test 4",
			a:        NewPfx(167772160, 8),  // 10.0.0.0/8
			b:        NewPfx(184549376, 12), // 11.0.0.0/12
			expected: false,
		},
		{
			name:     "Equal prefixes",
			a:        NewPfx(167772160, 8),
			b:        NewPfx(167772160, 8),
			expected: true,
		},
		{
			name:     "Partial octet",
			a:        NewPfx(2886729728, 12), // 172.16.0.0/12
			b:        NewPfx(2887778304, 16), // 172.32.0.0/16
			expected: false,
		},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, test.a.Contains(test.b), test.name)
	}
}

func TestContainsAddr(t *testing.T) {
	p := NewPfx(2886729728, 12) // 172.16.0.0/12
	assert.True(t, p.ContainsAddr(2887778303))
	assert.False(t, p.ContainsAddr(2887778304))
	assert.True(t, NewPfx(0, 0).ContainsAddr(1234))
}

func TestGetSupernet(t *testing.T) {
	tests := []struct {
		name     string
		a        *Prefix
		b        *Prefix
		expected *Prefix
	}{
		{
			name:     "Siblings",
			a:        NewPfx(167772160, 8), // 10.0.0.0/8
			b:        NewPfx(184549376, 8), // 11.0.0.0/8
			expected: NewPfx(167772160, 7), // 10.0.0.0/7
		},
		{
			name:     "Disjunct prefixes",
			a:        NewPfx(167772160, 8),  // 10.0.0.0/8
			b:        NewPfx(191134464, 24), // 11.100.123.0/24
			expected: NewPfx(167772160, 7),  // 10.0.0.0/7
		},
		{
			name:     "Nothing in common",
			a:        NewPfx(167772160, 8),   // 10.0.0.0/8
			b:        NewPfx(3221225984, 24), // 192.0.2.0/24
			expected: NewPfx(0, 0),
		},
		{
			name:     "Subnet",
			a:        NewPfx(167772160, 8),  // 10.0.0.0/8
			b:        NewPfx(167772160, 16), // 10.0.0.0/16
			expected: NewPfx(167772160, 8),
		},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, test.a.GetSupernet(test.b), test.name)
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "10.0.0.0/8", NewPfx(167772160, 8).String())
	assert.Equal(t, "0.0.0.0/0", NewPfx(0, 0).String())
}

func TestPacketConversion(t *testing.T) {
	p := packet.Prefix{Pfxlen: 12, Addr: packet.IPv4Addr{172, 16, 0, 0}}

	pfx := NewPfxFromPacket(p)
	assert.Equal(t, NewPfx(2886729728, 12), pfx)
	assert.Equal(t, p, pfx.Packet())
}
