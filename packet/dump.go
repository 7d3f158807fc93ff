package packet

import (
	"fmt"
	"io"
	"net"
)

// Dump writes a human readable representation of b to w
func (b *BGPMessage) Dump(w io.Writer) {
	fmt.Fprintf(w, "Type: %d (%s) Length: %d\n", b.Header.Type, msgTypeName(b.Header.Type), b.Header.Length)
	switch body := b.Body.(type) {
	case *BGPOpen:
		fmt.Fprintf(w, "OPEN Message:\n")
		fmt.Fprintf(w, "\tVersion: %d\n", body.Version)
		fmt.Fprintf(w, "\tASN: %d\n", body.AS)
		fmt.Fprintf(w, "\tHoldTime: %d\n", body.HoldTime)
		fmt.Fprintf(w, "\tBGP Identifier: %s\n", net.IP(uint32Bytes(body.BGPIdentifier)).String())
		fmt.Fprintf(w, "\tOptional Parameters: %d bytes\n", body.OptParmLen)
	case *BGPNotification:
		fmt.Fprintf(w, "NOTIFICATION Message:\n")
		fmt.Fprintf(w, "\t%s (%d/%d)\n", body.String(), body.ErrorCode, body.ErrorSubcode)
		if len(body.Data) > 0 {
			fmt.Fprintf(w, "\tData: %x\n", body.Data)
		}
	case *BGPUpdate:
		fmt.Fprintf(w, "UPDATE Message:\n")
		fmt.Fprintf(w, "Withdrawn routes:\n")
		for _, r := range body.WithdrawnRoutes {
			fmt.Fprintf(w, "\t%s\n", r.String())
		}

		fmt.Fprintf(w, "Path attributes:\n")
		for i := range body.PathAttributes {
			a := &body.PathAttributes[i]
			fmt.Fprintf(w, "\tType: %s Flags: %s\n", a.TypeCode, a.Flags)
			fmt.Fprintf(w, "\t\t%s\n", a.valueString())
		}

		fmt.Fprintf(w, "NLRIs:\n")
		for _, n := range body.NLRI {
			fmt.Fprintf(w, "\t%s\n", n.String())
		}
	}
}

func (pa *PathAttribute) valueString() string {
	var v interface{}
	var err error

	switch pa.TypeCode {
	case OriginAttr:
		var o uint8
		o, err = pa.Origin()
		v = originName(o)
	case ASPathAttr:
		v, err = pa.ASPath()
	case NextHopAttr:
		var addr IPv4Addr
		addr, err = pa.NextHop()
		v = net.IP(addr[:]).String()
	case MEDAttr:
		v, err = pa.MED()
	case LocalPrefAttr:
		v, err = pa.LocalPref()
	case AggregatorAttr:
		var aggr Aggregator
		aggr, err = pa.Aggregator()
		v = fmt.Sprintf("AS%d %s", aggr.ASN, net.IP(aggr.Addr[:]).String())
	default:
		return fmt.Sprintf("%x", pa.Value)
	}

	if err != nil {
		return fmt.Sprintf("%x (%v)", pa.Value, err)
	}
	return fmt.Sprintf("%v", v)
}

func originName(o uint8) string {
	switch o {
	case IGP:
		return "IGP"
	case EGP:
		return "EGP"
	case INCOMPLETE:
		return "INCOMPLETE"
	}
	return fmt.Sprintf("%d", o)
}
