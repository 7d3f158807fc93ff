package packet

import (
	"errors"
	"fmt"
)

const (
	MessageHeaderError      = 1
	OpenMessageError        = 2
	UpdateMessageError      = 3
	HoldTimeExpired         = 4
	FiniteStateMachineError = 5
	Cease                   = 6

	// Msg Header Errors
	ConnectionNotSync = 1
	BadMessageLength  = 2
	BadMessageType    = 3

	// Open Msg Errors
	UnsupportedVersionNumber     = 1
	BadPeerAS                    = 2
	BadBGPIdentifier             = 3
	UnsupportedOptionalParameter = 4
	DeprecatedOpenMsgError5      = 5
	UnacceptableHoldTime         = 6
	UnsupportedCapability        = 7

	// Update Msg Errors
	MalformedAttributeList    = 1
	UnrecognizedWellKnownAttr = 2
	MissingWellKnonAttr       = 3
	AttrFlagsError            = 4
	AttrLengthError           = 5
	InvalidOriginAttr         = 6
	DeprecatedUpdateMsgError7 = 7
	InvalidNextHopAttr        = 8
	OptionalAttError          = 9
	InvalidNetworkField       = 10
	MalformedASPath           = 11

	// Cease subcodes
	MaxCeaseSubcode = 8
)

var errorCodeNames = map[uint8]string{
	MessageHeaderError:      "Message Header Error",
	OpenMessageError:        "OPEN Message Error",
	UpdateMessageError:      "UPDATE Message Error",
	HoldTimeExpired:         "Hold Timer Expired",
	FiniteStateMachineError: "Finite State Machine Error",
	Cease:                   "Cease",
}

var errorSubcodeNames = map[uint8]map[uint8]string{
	MessageHeaderError: {
		ConnectionNotSync: "Connection Not Synchronized",
		BadMessageLength:  "Bad Message Length",
		BadMessageType:    "Bad Message Type",
	},
	OpenMessageError: {
		UnsupportedVersionNumber:     "Unsupported Version Number",
		BadPeerAS:                    "Bad Peer AS",
		BadBGPIdentifier:             "Bad BGP Identifier",
		UnsupportedOptionalParameter: "Unsupported Optional Parameter",
		UnacceptableHoldTime:         "Unacceptable Hold Time",
		UnsupportedCapability:        "Unsupported Capability",
	},
	UpdateMessageError: {
		MalformedAttributeList:    "Malformed Attribute List",
		UnrecognizedWellKnownAttr: "Unrecognized Well-known Attribute",
		MissingWellKnonAttr:       "Missing Well-known Attribute",
		AttrFlagsError:            "Attribute Flags Error",
		AttrLengthError:           "Attribute Length Error",
		InvalidOriginAttr:         "Invalid ORIGIN Attribute",
		InvalidNextHopAttr:        "Invalid NEXT_HOP Attribute",
		OptionalAttError:          "Optional Attribute Error",
		InvalidNetworkField:       "Invalid Network Field",
		MalformedASPath:           "Malformed AS_PATH",
	},
}

func (n *BGPNotification) String() string {
	code, ok := errorCodeNames[n.ErrorCode]
	if !ok {
		code = fmt.Sprintf("Unknown Error %d", n.ErrorCode)
	}

	if n.ErrorSubcode == 0 {
		return code
	}

	sub, ok := errorSubcodeNames[n.ErrorCode][n.ErrorSubcode]
	if !ok {
		sub = fmt.Sprintf("subcode %d", n.ErrorSubcode)
	}
	return code + " / " + sub
}

// Validate checks if the subcode is defined for the error code. Decoding
// leaves both values alone.
func (n *BGPNotification) Validate() error {
	if n.ErrorCode > Cease || n.ErrorCode == 0 {
		return fmt.Errorf("Invalid error code: %d", n.ErrorCode)
	}

	switch n.ErrorCode {
	case MessageHeaderError:
		if n.ErrorSubcode > BadMessageType || n.ErrorSubcode == 0 {
			return n.invalidSubcode()
		}
	case OpenMessageError:
		if n.ErrorSubcode > UnsupportedCapability || n.ErrorSubcode == 0 || n.ErrorSubcode == DeprecatedOpenMsgError5 {
			return n.invalidSubcode()
		}
	case UpdateMessageError:
		if n.ErrorSubcode > MalformedASPath || n.ErrorSubcode == 0 || n.ErrorSubcode == DeprecatedUpdateMsgError7 {
			return n.invalidSubcode()
		}
	case HoldTimeExpired, FiniteStateMachineError:
		if n.ErrorSubcode != 0 {
			return n.invalidSubcode()
		}
	case Cease:
		if n.ErrorSubcode > MaxCeaseSubcode {
			return n.invalidSubcode()
		}
	}

	return nil
}

func (n *BGPNotification) invalidSubcode() error {
	return fmt.Errorf("Invalid error sub code: %d/%d", n.ErrorCode, n.ErrorSubcode)
}

// NewNotificationFromError maps a decode error to the notification a session
// should answer it with. ok is false for errors without a mapping.
func NewNotificationFromError(err error) (n *BGPNotification, ok bool) {
	switch {
	case errors.Is(err, ErrBadMessageLength):
		return &BGPNotification{ErrorCode: MessageHeaderError, ErrorSubcode: BadMessageLength}, true
	case errors.Is(err, ErrUnknownMessageType):
		return &BGPNotification{ErrorCode: MessageHeaderError, ErrorSubcode: BadMessageType}, true
	}

	var ferr *FrameError
	if !errors.As(err, &ferr) {
		return nil, false
	}

	switch ferr.Header.Type {
	case UpdateMsg:
		if errors.Is(err, ErrInvalidPrefixLength) {
			return &BGPNotification{ErrorCode: UpdateMessageError, ErrorSubcode: InvalidNetworkField}, true
		}
		return &BGPNotification{ErrorCode: UpdateMessageError, ErrorSubcode: MalformedAttributeList}, true
	case OpenMsg, NotificationMsg:
		if errors.Is(err, ErrTruncated) {
			return &BGPNotification{ErrorCode: MessageHeaderError, ErrorSubcode: BadMessageLength}, true
		}
	}

	return nil, false
}
