package packet

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// AttrFlags is the set of path attribute flags. Bits 0-3 of the wire byte
// are reserved and never part of the set.
type AttrFlags uint8

const (
	FlagOptional       AttrFlags = 0x80
	FlagTransitive     AttrFlags = 0x40
	FlagPartial        AttrFlags = 0x20
	FlagExtendedLength AttrFlags = 0x10

	attrFlagMask AttrFlags = 0xf0
)

// DecodeAttrFlags converts a flags octet into a flag set
func DecodeAttrFlags(x uint8) AttrFlags {
	return AttrFlags(x) & attrFlagMask
}

// Has checks if all flags of x are set in f
func (f AttrFlags) Has(x AttrFlags) bool {
	return f&x == x
}

func (f AttrFlags) String() string {
	names := make([]string, 0, 4)
	for _, x := range []struct {
		flag AttrFlags
		name string
	}{
		{FlagOptional, "Optional"},
		{FlagTransitive, "Transitive"},
		{FlagPartial, "Partial"},
		{FlagExtendedLength, "ExtendedLength"},
	} {
		if f.Has(x.flag) {
			names = append(names, x.name)
		}
	}

	return "{" + strings.Join(names, ",") + "}"
}

// AttrTypeCode identifies a path attribute. Codes outside the well known
// range are kept as they are so they survive a decode/encode cycle.
type AttrTypeCode uint8

// Known checks if c is one of the well known attribute types
func (c AttrTypeCode) Known() bool {
	return c >= OriginAttr && c <= AggregatorAttr
}

func (c AttrTypeCode) String() string {
	switch c {
	case OriginAttr:
		return "ORIGIN"
	case ASPathAttr:
		return "AS_PATH"
	case NextHopAttr:
		return "NEXT_HOP"
	case MEDAttr:
		return "MULTI_EXIT_DISC"
	case LocalPrefAttr:
		return "LOCAL_PREF"
	case AtomicAggrAttr:
		return "ATOMIC_AGGREGATE"
	case AggregatorAttr:
		return "AGGREGATOR"
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint8(c))
}

type PathAttribute struct {
	Flags    AttrFlags
	TypeCode AttrTypeCode
	Value    []byte
}

// DecodePathAttr decodes the path attribute at the start of b and returns it
// together with the number of bytes consumed.
func DecodePathAttr(b []byte) (PathAttribute, int, error) {
	return decodePathAttr(bytes.NewBuffer(b))
}

// DecodePathAttrs decodes a list of path attributes occupying exactly b
func DecodePathAttrs(b []byte) ([]PathAttribute, error) {
	var attrs []PathAttribute
	buf := bytes.NewBuffer(b)
	for buf.Len() > 0 {
		pa, _, err := decodePathAttr(buf)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, pa)
	}

	return attrs, nil
}

func decodePathAttr(buf *bytes.Buffer) (PathAttribute, int, error) {
	pa := PathAttribute{}

	if buf.Len() < 2 {
		return pa, 0, truncated("path attribute header", 2, buf.Len())
	}
	pa.Flags = DecodeAttrFlags(buf.Next(1)[0])
	pa.TypeCode = AttrTypeCode(buf.Next(1)[0])
	p := 2

	n, l, err := pa.decodeLength(buf)
	if err != nil {
		return pa, p, err
	}
	p += n

	if buf.Len() < int(l) {
		return pa, p, truncated(fmt.Sprintf("%s value", pa.TypeCode), int(l), buf.Len())
	}

	if l > 0 {
		pa.Value = make([]byte, l)
		copy(pa.Value, buf.Next(int(l)))
	}
	p += int(l)

	return pa, p, nil
}

// decodeLength reads the attribute length field. Its width depends on the
// extended length flag.
func (pa *PathAttribute) decodeLength(buf *bytes.Buffer) (int, uint16, error) {
	if pa.Flags.Has(FlagExtendedLength) {
		if buf.Len() < 2 {
			return 0, 0, truncated("extended attribute length", 2, buf.Len())
		}
		return 2, binary.BigEndian.Uint16(buf.Next(2)), nil
	}

	if buf.Len() < 1 {
		return 0, 0, truncated("attribute length", 1, buf.Len())
	}
	return 1, uint16(buf.Next(1)[0]), nil
}

// EncodePathAttr returns the wire form of pa
func EncodePathAttr(pa *PathAttribute) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 4+len(pa.Value)))
	if err := encodePathAttr(buf, pa); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func encodePathAttr(buf *bytes.Buffer, pa *PathAttribute) error {
	l := len(pa.Value)
	ext := pa.Flags.Has(FlagExtendedLength)
	if !ext && l > math.MaxUint8 {
		return fmt.Errorf("%s value of %d bytes without extended length: %w", pa.TypeCode, l, ErrLengthFlagMismatch)
	}
	if l > math.MaxUint16 {
		return fmt.Errorf("%s value of %d bytes: %w", pa.TypeCode, l, ErrLengthFlagMismatch)
	}

	buf.WriteByte(uint8(pa.Flags & attrFlagMask))
	buf.WriteByte(uint8(pa.TypeCode))
	if ext {
		var x [2]byte
		binary.BigEndian.PutUint16(x[:], uint16(l))
		buf.Write(x[:])
	} else {
		buf.WriteByte(uint8(l))
	}
	buf.Write(pa.Value)

	return nil
}

func encodePathAttrs(buf *bytes.Buffer, attrs []PathAttribute) error {
	for i := range attrs {
		if err := encodePathAttr(buf, &attrs[i]); err != nil {
			return err
		}
	}

	return nil
}

func (pa *PathAttribute) expect(code AttrTypeCode, minLen int) error {
	if pa.TypeCode != code {
		return fmt.Errorf("attribute is %s, not %s", pa.TypeCode, code)
	}
	if len(pa.Value) < minLen {
		return truncated(code.String(), minLen, len(pa.Value))
	}
	return nil
}

// Origin returns the value of an ORIGIN attribute
func (pa *PathAttribute) Origin() (uint8, error) {
	if err := pa.expect(OriginAttr, 1); err != nil {
		return 0, err
	}

	return pa.Value[0], nil
}

// ASPath decodes the segments of an AS_PATH attribute. ASNs are two octets wide.
func (pa *PathAttribute) ASPath() (ASPath, error) {
	if err := pa.expect(ASPathAttr, 0); err != nil {
		return nil, err
	}

	path := make(ASPath, 0)
	buf := bytes.NewBuffer(pa.Value)
	for buf.Len() > 0 {
		if buf.Len() < 2 {
			return nil, truncated("AS path segment header", 2, buf.Len())
		}
		segment := ASPathSegment{
			Type: buf.Next(1)[0],
		}
		count := int(buf.Next(1)[0])

		if segment.Type != ASSet && segment.Type != ASSequence {
			return nil, fmt.Errorf("Invalid AS Path segment type: %d", segment.Type)
		}

		if count == 0 {
			return nil, fmt.Errorf("Invalid AS Path segment length: %d", count)
		}

		if buf.Len() < count*2 {
			return nil, truncated("AS path segment", count*2, buf.Len())
		}

		segment.ASNs = make([]uint16, 0, count)
		for i := 0; i < count; i++ {
			segment.ASNs = append(segment.ASNs, binary.BigEndian.Uint16(buf.Next(2)))
		}
		path = append(path, segment)
	}

	return path, nil
}

// NextHop returns the value of a NEXT_HOP attribute
func (pa *PathAttribute) NextHop() (IPv4Addr, error) {
	addr := IPv4Addr{}
	if err := pa.expect(NextHopAttr, 4); err != nil {
		return addr, err
	}

	copy(addr[:], pa.Value)
	return addr, nil
}

// MED returns the value of a MULTI_EXIT_DISC attribute
func (pa *PathAttribute) MED() (uint32, error) {
	if err := pa.expect(MEDAttr, 4); err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint32(pa.Value), nil
}

// LocalPref returns the value of a LOCAL_PREF attribute
func (pa *PathAttribute) LocalPref() (uint32, error) {
	if err := pa.expect(LocalPrefAttr, 4); err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint32(pa.Value), nil
}

// Aggregator returns the value of an AGGREGATOR attribute
func (pa *PathAttribute) Aggregator() (Aggregator, error) {
	aggr := Aggregator{}
	if err := pa.expect(AggregatorAttr, 6); err != nil {
		return aggr, err
	}

	aggr.ASN = binary.BigEndian.Uint16(pa.Value[:2])
	copy(aggr.Addr[:], pa.Value[2:6])
	return aggr, nil
}

func NewOriginAttr(origin uint8) PathAttribute {
	return PathAttribute{
		Flags:    FlagTransitive,
		TypeCode: OriginAttr,
		Value:    []byte{origin},
	}
}

// NewASPathAttr builds an AS_PATH attribute, switching to an extended length
// field when the encoded path does not fit one octet.
func NewASPathAttr(path ASPath) (PathAttribute, error) {
	pa := PathAttribute{
		Flags:    FlagTransitive,
		TypeCode: ASPathAttr,
	}

	buf := bytes.NewBuffer(nil)
	for _, segment := range path {
		if len(segment.ASNs) == 0 || len(segment.ASNs) > math.MaxUint8 {
			return pa, fmt.Errorf("Invalid AS Path segment length: %d", len(segment.ASNs))
		}

		buf.WriteByte(segment.Type)
		buf.WriteByte(uint8(len(segment.ASNs)))
		for _, asn := range segment.ASNs {
			var x [2]byte
			binary.BigEndian.PutUint16(x[:], asn)
			buf.Write(x[:])
		}
	}

	if buf.Len() > 0 {
		pa.Value = buf.Bytes()
	}
	if buf.Len() > math.MaxUint8 {
		pa.Flags |= FlagExtendedLength
	}

	return pa, nil
}

func NewNextHopAttr(addr IPv4Addr) PathAttribute {
	return PathAttribute{
		Flags:    FlagTransitive,
		TypeCode: NextHopAttr,
		Value:    []byte{addr[0], addr[1], addr[2], addr[3]},
	}
}

func NewMEDAttr(med uint32) PathAttribute {
	return PathAttribute{
		Flags:    FlagOptional,
		TypeCode: MEDAttr,
		Value:    uint32Bytes(med),
	}
}

func NewLocalPrefAttr(lpref uint32) PathAttribute {
	return PathAttribute{
		Flags:    FlagTransitive,
		TypeCode: LocalPrefAttr,
		Value:    uint32Bytes(lpref),
	}
}

func NewAtomicAggregateAttr() PathAttribute {
	return PathAttribute{
		Flags:    FlagTransitive,
		TypeCode: AtomicAggrAttr,
	}
}

func NewAggregatorAttr(asn uint16, addr IPv4Addr) PathAttribute {
	v := make([]byte, 6)
	binary.BigEndian.PutUint16(v[:2], asn)
	copy(v[2:], addr[:])

	return PathAttribute{
		Flags:    FlagOptional | FlagTransitive,
		TypeCode: AggregatorAttr,
		Value:    v,
	}
}

func uint32Bytes(x uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, x)
	return b
}
