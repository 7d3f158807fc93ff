package packet

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
)

// Prefix is an IPv4 prefix as carried in withdrawn routes and NLRI.
// Only the first ceil(Pfxlen/8) octets of Addr are transmitted.
type Prefix struct {
	Pfxlen uint8
	Addr   IPv4Addr
}

// Uint32 returns the prefix address as a big endian integer
func (p Prefix) Uint32() uint32 {
	return binary.BigEndian.Uint32(p.Addr[:])
}

func (p Prefix) String() string {
	return fmt.Sprintf("%s/%d", net.IP(p.Addr[:]).String(), p.Pfxlen)
}

// pfxOctets returns the number of address octets following the length byte
func pfxOctets(pfxlen uint8) int {
	return (int(pfxlen) + OctetLen - 1) / OctetLen
}

// DecodePrefix decodes the prefix at the start of b and returns it together
// with the number of bytes consumed.
func DecodePrefix(b []byte) (Prefix, int, error) {
	return decodePrefix(bytes.NewBuffer(b))
}

// DecodePrefixes decodes a list of prefixes occupying exactly b
func DecodePrefixes(b []byte) ([]Prefix, error) {
	var ret []Prefix
	buf := bytes.NewBuffer(b)
	for buf.Len() > 0 {
		pfx, _, err := decodePrefix(buf)
		if err != nil {
			return nil, err
		}
		ret = append(ret, pfx)
	}

	return ret, nil
}

func decodePrefix(buf *bytes.Buffer) (Prefix, int, error) {
	pfx := Prefix{}

	pfxlen, err := buf.ReadByte()
	if err != nil {
		return pfx, 0, truncated("prefix length", 1, 0)
	}
	pfx.Pfxlen = pfxlen

	n := pfxOctets(pfxlen)
	if n > net.IPv4len {
		return pfx, 1, fmt.Errorf("prefix length %d exceeds %d bits: %w", pfxlen, net.IPv4len*OctetLen, ErrInvalidPrefixLength)
	}

	if buf.Len() < n {
		return pfx, 1, truncated(fmt.Sprintf("prefix /%d", pfxlen), n, buf.Len())
	}

	copy(pfx.Addr[:], buf.Next(n))
	return pfx, 1 + n, nil
}

// EncodePrefix returns the wire form of p: the length byte followed by
// ceil(Pfxlen/8) address octets.
func EncodePrefix(p Prefix) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 1+net.IPv4len))
	if err := encodePrefix(buf, p); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func encodePrefix(buf *bytes.Buffer, p Prefix) error {
	if p.Pfxlen > net.IPv4len*OctetLen {
		return fmt.Errorf("unable to encode %s: %w", p.String(), ErrInvalidPrefixLength)
	}

	buf.WriteByte(p.Pfxlen)
	buf.Write(p.Addr[:pfxOctets(p.Pfxlen)])
	return nil
}

func encodePrefixes(buf *bytes.Buffer, pfxs []Prefix) error {
	for _, p := range pfxs {
		if err := encodePrefix(buf, p); err != nil {
			return err
		}
	}

	return nil
}
