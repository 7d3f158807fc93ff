package packet

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Decode decodes one complete BGP message. msg has to start with the header,
// bytes past the length declared in the header are ignored.
func Decode(msg []byte) (*BGPMessage, error) {
	hdr, err := DecodeHeader(msg)
	if err != nil {
		return nil, fmt.Errorf("Failed to decode header: %w", err)
	}

	if len(msg) < int(hdr.Length) {
		return nil, truncated(msgTypeName(hdr.Type)+" message", int(hdr.Length), len(msg))
	}

	body, err := decodeMsgBody(msg[HeaderLen:hdr.Length], hdr.Type)
	if err != nil {
		return nil, &FrameError{Header: hdr, Err: err}
	}

	return &BGPMessage{
		Header: &hdr,
		Body:   body,
	}, nil
}

func decodeMsgBody(body []byte, msgType uint8) (Body, error) {
	switch msgType {
	case OpenMsg:
		return DecodeOpenMsg(body)
	case UpdateMsg:
		return DecodeUpdateMsg(body)
	case KeepaliveMsg:
		return DecodeKeepaliveMsg(body)
	case NotificationMsg:
		return DecodeNotificationMsg(body)
	}
	return nil, fmt.Errorf("message type %d: %w", msgType, ErrUnknownMessageType)
}

// DecodeUpdateMsg decodes the body of an UPDATE message
func DecodeUpdateMsg(body []byte) (*BGPUpdate, error) {
	msg := &BGPUpdate{}
	buf := bytes.NewBuffer(body)

	withdrawnLen, err := decodeSectionLen(buf, "withdrawn routes")
	if err != nil {
		return nil, err
	}

	msg.WithdrawnRoutes, err = DecodePrefixes(buf.Next(withdrawnLen))
	if err != nil {
		return nil, fmt.Errorf("Failed to decode withdrawn routes: %w", err)
	}

	totalPathAttrLen, err := decodeSectionLen(buf, "path attributes")
	if err != nil {
		return nil, err
	}

	msg.PathAttributes, err = DecodePathAttrs(buf.Next(totalPathAttrLen))
	if err != nil {
		return nil, fmt.Errorf("Failed to decode path attributes: %w", err)
	}

	msg.NLRI, err = DecodePrefixes(buf.Next(buf.Len()))
	if err != nil {
		return nil, fmt.Errorf("Failed to decode NLRI: %w", err)
	}

	return msg, nil
}

// decodeSectionLen reads a two octet section length and makes sure the
// section fits into what is left of buf.
func decodeSectionLen(buf *bytes.Buffer, section string) (int, error) {
	var l uint16
	if err := decode(buf, []interface{}{&l}); err != nil {
		return 0, fmt.Errorf("Unable to read %s length: %w", section, err)
	}

	if buf.Len() < int(l) {
		return 0, truncated(section, int(l), buf.Len())
	}

	return int(l), nil
}

// DecodeNotificationMsg decodes the body of a NOTIFICATION message. Code and
// subcode are not checked, see BGPNotification.Validate.
func DecodeNotificationMsg(body []byte) (*BGPNotification, error) {
	msg := &BGPNotification{}
	buf := bytes.NewBuffer(body)

	fields := []interface{}{
		&msg.ErrorCode,
		&msg.ErrorSubcode,
	}

	err := decode(buf, fields)
	if err != nil {
		return nil, err
	}

	if buf.Len() > 0 {
		msg.Data = make([]byte, buf.Len())
		copy(msg.Data, buf.Bytes())
	}

	return msg, nil
}

// DecodeOpenMsg decodes the body of an OPEN message. Optional parameters
// are kept as raw bytes.
func DecodeOpenMsg(body []byte) (*BGPOpen, error) {
	msg := &BGPOpen{}
	buf := bytes.NewBuffer(body)

	fields := []interface{}{
		&msg.Version,
		&msg.AS,
		&msg.HoldTime,
		&msg.BGPIdentifier,
		&msg.OptParmLen,
	}

	err := decode(buf, fields)
	if err != nil {
		return nil, err
	}

	if msg.OptParmLen > 0 {
		if buf.Len() < int(msg.OptParmLen) {
			return nil, truncated("optional parameters", int(msg.OptParmLen), buf.Len())
		}
		msg.OptParms = make([]byte, msg.OptParmLen)
		copy(msg.OptParms, buf.Next(int(msg.OptParmLen)))
	}

	return msg, nil
}

// DecodeKeepaliveMsg decodes the (empty) body of a KEEPALIVE message
func DecodeKeepaliveMsg(body []byte) (*BGPKeepalive, error) {
	return &BGPKeepalive{}, nil
}

// DecodeHeader decodes the 19 byte message header at the start of b. The
// marker is not checked. On ErrBadMessageLength and ErrUnknownMessageType the
// returned header is still populated.
func DecodeHeader(b []byte) (BGPHeader, error) {
	hdr := BGPHeader{}

	if len(b) < HeaderLen {
		return hdr, truncated("header", HeaderLen, len(b))
	}

	buf := bytes.NewBuffer(b[MarkerLen:HeaderLen])
	fields := []interface{}{
		&hdr.Length,
		&hdr.Type,
	}

	err := decode(buf, fields)
	if err != nil {
		return hdr, err
	}

	if hdr.Length < MinLen || hdr.Length > MaxLen {
		return hdr, fmt.Errorf("Invalid length in BGP header: %d: %w", hdr.Length, ErrBadMessageLength)
	}

	if hdr.Type > KeepaliveMsg || hdr.Type == 0 {
		return hdr, fmt.Errorf("Invalid message type: %d: %w", hdr.Type, ErrUnknownMessageType)
	}

	return hdr, nil
}

func decode(buf *bytes.Buffer, fields []interface{}) error {
	var err error
	for _, field := range fields {
		err = binary.Read(buf, binary.BigEndian, field)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return fmt.Errorf("Unable to read from buffer: %w", ErrTruncated)
			}
			return fmt.Errorf("Unable to read from buffer: %v", err)
		}
	}
	return nil
}
