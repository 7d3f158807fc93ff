package packet

import (
	"strconv"
	"strings"
)

const (
	OctetLen = 8

	MarkerLen = 16
	HeaderLen = 19
	MinLen    = 19
	MaxLen    = 4096

	// OpenLen is the length of an OPEN body without optional parameters
	OpenLen = 10

	// Length of the withdrawn routes and total path attribute length fields
	SectionLenFieldLen = 2

	OpenMsg         = 1
	UpdateMsg       = 2
	NotificationMsg = 3
	KeepaliveMsg    = 4

	BGPVersion = 4

	// Attribute Type Codes
	OriginAttr     AttrTypeCode = 1
	ASPathAttr     AttrTypeCode = 2
	NextHopAttr    AttrTypeCode = 3
	MEDAttr        AttrTypeCode = 4
	LocalPrefAttr  AttrTypeCode = 5
	AtomicAggrAttr AttrTypeCode = 6
	AggregatorAttr AttrTypeCode = 7

	// ORIGIN values
	IGP        = 0
	EGP        = 1
	INCOMPLETE = 2

	// ASPath Segment Types
	ASSet      = 1
	ASSequence = 2
)

// Body is implemented by the four message kinds. The header type byte alone
// decides which one a message carries.
type Body interface {
	MsgType() uint8
}

type BGPMessage struct {
	Header *BGPHeader
	Body   Body
}

type BGPHeader struct {
	Length uint16
	Type   uint8
}

// BodyLen returns the number of body bytes following the header
func (h *BGPHeader) BodyLen() int {
	return int(h.Length) - HeaderLen
}

type BGPOpen struct {
	Version       uint8
	AS            uint16
	HoldTime      uint16
	BGPIdentifier uint32
	OptParmLen    uint8
	OptParms      []byte
}

// MsgType returns OpenMsg
func (o *BGPOpen) MsgType() uint8 {
	return OpenMsg
}

type BGPKeepalive struct{}

// MsgType returns KeepaliveMsg
func (k *BGPKeepalive) MsgType() uint8 {
	return KeepaliveMsg
}

type BGPNotification struct {
	ErrorCode    uint8
	ErrorSubcode uint8
	Data         []byte
}

// MsgType returns NotificationMsg
func (n *BGPNotification) MsgType() uint8 {
	return NotificationMsg
}

type BGPUpdate struct {
	WithdrawnRoutes []Prefix
	PathAttributes  []PathAttribute
	NLRI            []Prefix
}

// MsgType returns UpdateMsg
func (u *BGPUpdate) MsgType() uint8 {
	return UpdateMsg
}

type IPv4Addr [4]byte

type ASPath []ASPathSegment
type ASPathSegment struct {
	Type uint8
	ASNs []uint16
}

func (p ASPath) String() string {
	parts := make([]string, 0, len(p))
	for _, segment := range p {
		asns := make([]string, 0, len(segment.ASNs))
		for _, asn := range segment.ASNs {
			asns = append(asns, strconv.Itoa(int(asn)))
		}

		if segment.Type == ASSet {
			parts = append(parts, "{"+strings.Join(asns, ",")+"}")
			continue
		}
		parts = append(parts, strings.Join(asns, " "))
	}

	return strings.Join(parts, " ")
}

type Aggregator struct {
	ASN  uint16
	Addr IPv4Addr
}

func msgTypeName(t uint8) string {
	switch t {
	case OpenMsg:
		return "OPEN"
	case UpdateMsg:
		return "UPDATE"
	case NotificationMsg:
		return "NOTIFICATION"
	case KeepaliveMsg:
		return "KEEPALIVE"
	}
	return "UNKNOWN"
}
