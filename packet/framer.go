package packet

import (
	"errors"
)

// Frame is one complete message as declared by its header's length field
type Frame struct {
	Header BGPHeader
	Raw    []byte
}

// Body returns the bytes following the header
func (fr Frame) Body() []byte {
	return fr.Raw[HeaderLen:]
}

// Decode dispatches the frame's body to the decoder of its message type.
// Errors are returned as *FrameError.
func (fr Frame) Decode() (*BGPMessage, error) {
	hdr := fr.Header
	body, err := decodeMsgBody(fr.Body(), hdr.Type)
	if err != nil {
		return nil, &FrameError{Header: hdr, Err: err}
	}

	return &BGPMessage{
		Header: &hdr,
		Body:   body,
	}, nil
}

// Framer cuts complete frames out of a byte stream that arrives in arbitrary
// pieces. A Framer holds the state of exactly one connection and must not be
// shared between goroutines.
type Framer struct {
	buf []byte
}

func NewFramer() *Framer {
	return &Framer{
		buf: make([]byte, 0, MaxLen),
	}
}

// Write appends p to the received bytes. It never returns an error.
func (f *Framer) Write(p []byte) (int, error) {
	f.buf = append(f.buf, p...)
	return len(p), nil
}

// Buffered returns the number of received bytes that are not part of a
// returned frame yet
func (f *Framer) Buffered() int {
	return len(f.buf)
}

// Pending returns a copy of the received bytes not consumed yet
func (f *Framer) Pending() []byte {
	ret := make([]byte, len(f.buf))
	copy(ret, f.buf)
	return ret
}

// Reset drops all buffered bytes. A partial frame at that point is discarded.
func (f *Framer) Reset() {
	f.buf = f.buf[:0]
}

// Next returns the next complete frame. If the frame is not complete yet
// ErrIncompleteFrame is returned and nothing is consumed. ErrBadMessageLength
// means the header's length field can not be used to find the next frame
// boundary and the stream is lost.
func (f *Framer) Next() (Frame, error) {
	if len(f.buf) < HeaderLen {
		return Frame{}, ErrIncompleteFrame
	}

	hdr, err := DecodeHeader(f.buf)
	if err != nil && !errors.Is(err, ErrUnknownMessageType) {
		return Frame{Header: hdr}, err
	}

	if len(f.buf) < int(hdr.Length) {
		return Frame{}, ErrIncompleteFrame
	}

	raw := make([]byte, hdr.Length)
	copy(raw, f.buf)
	f.buf = f.buf[:copy(f.buf, f.buf[hdr.Length:])]

	return Frame{
		Header: hdr,
		Raw:    raw,
	}, nil
}

// Feed writes p and returns all frames that are complete afterwards, in
// stream order.
func (f *Framer) Feed(p []byte) ([]Frame, error) {
	f.Write(p)

	var frames []Frame
	for {
		fr, err := f.Next()
		if err != nil {
			if errors.Is(err, ErrIncompleteFrame) {
				return frames, nil
			}
			return frames, err
		}
		frames = append(frames, fr)
	}
}
