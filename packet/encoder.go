package packet

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Encode encodes msg including the message header
func Encode(msg Body) ([]byte, error) {
	switch m := msg.(type) {
	case *BGPOpen:
		return EncodeOpenMsg(m)
	case *BGPUpdate:
		return EncodeUpdateMsg(m)
	case *BGPNotification:
		return EncodeNotificationMsg(m)
	case *BGPKeepalive:
		return EncodeKeepaliveMsg()
	}
	return nil, fmt.Errorf("unable to encode %T: %w", msg, ErrUnknownMessageType)
}

func EncodeKeepaliveMsg() ([]byte, error) {
	keepaliveLen := HeaderLen
	buf := bytes.NewBuffer(make([]byte, 0, keepaliveLen))
	err := encodeHeader(buf, keepaliveLen, KeepaliveMsg)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// EncodeNotificationMsg is not supported. No wire layout for the data field
// is defined on the sending side.
func EncodeNotificationMsg(msg *BGPNotification) ([]byte, error) {
	return nil, fmt.Errorf("NOTIFICATION encoding: %w", ErrUnimplemented)
}

// EncodeOpenMsg encodes an OPEN message. Optional parameters can not be
// encoded and are rejected.
func EncodeOpenMsg(msg *BGPOpen) ([]byte, error) {
	if msg.OptParmLen != 0 || len(msg.OptParms) != 0 {
		return nil, fmt.Errorf("OPEN optional parameters: %w", ErrUnimplemented)
	}

	openLen := HeaderLen + OpenLen
	buf := bytes.NewBuffer(make([]byte, 0, openLen))
	err := encodeHeader(buf, openLen, OpenMsg)
	if err != nil {
		return nil, err
	}

	fields := []interface{}{
		msg.Version,
		msg.AS,
		msg.HoldTime,
		msg.BGPIdentifier,
		uint8(0),
	}

	err = encode(buf, fields)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// EncodeUpdateMsg encodes an UPDATE message. Section lengths and the total
// length in the header are filled in once the body is complete.
func EncodeUpdateMsg(msg *BGPUpdate) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, MaxLen))
	err := encodeHeader(buf, HeaderLen, UpdateMsg)
	if err != nil {
		return nil, err
	}

	withdrawnLenPos := buf.Len()
	buf.Write([]byte{0, 0})
	if err := encodePrefixes(buf, msg.WithdrawnRoutes); err != nil {
		return nil, fmt.Errorf("Unable to encode withdrawn routes: %w", err)
	}
	patchLen(buf, withdrawnLenPos)

	pathAttrLenPos := buf.Len()
	buf.Write([]byte{0, 0})
	if err := encodePathAttrs(buf, msg.PathAttributes); err != nil {
		return nil, fmt.Errorf("Unable to encode path attributes: %w", err)
	}
	patchLen(buf, pathAttrLenPos)

	if err := encodePrefixes(buf, msg.NLRI); err != nil {
		return nil, fmt.Errorf("Unable to encode NLRI: %w", err)
	}

	if buf.Len() > MaxLen {
		return nil, fmt.Errorf("UPDATE message length %d exceeds %d: %w", buf.Len(), MaxLen, ErrBadMessageLength)
	}
	binary.BigEndian.PutUint16(buf.Bytes()[MarkerLen:], uint16(buf.Len()))

	return buf.Bytes(), nil
}

// patchLen writes the number of bytes following the two octet length field
// at pos into that field
func patchLen(buf *bytes.Buffer, pos int) {
	b := buf.Bytes()
	binary.BigEndian.PutUint16(b[pos:], uint16(len(b)-pos-SectionLenFieldLen))
}

// EncodeHeader returns a header for a message with a body of bodyLen bytes
func EncodeHeader(bodyLen uint16, typ uint8) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, HeaderLen))
	err := encodeHeader(buf, HeaderLen+int(bodyLen), typ)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func encodeHeader(buf *bytes.Buffer, length int, typ uint8) error {
	if length > MaxLen {
		return fmt.Errorf("message length %d exceeds %d: %w", length, MaxLen, ErrBadMessageLength)
	}

	for i := 0; i < MarkerLen; i++ {
		if err := buf.WriteByte(0xff); err != nil {
			return err
		}
	}

	return encode(buf, []interface{}{uint16(length), typ})
}

func encode(buf *bytes.Buffer, fields []interface{}) error {
	var err error
	for _, field := range fields {
		err = binary.Write(buf, binary.BigEndian, field)
		if err != nil {
			return fmt.Errorf("Unable to write to buffer: %v", err)
		}
	}
	return nil
}
