package packet

import (
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/chunkreader"
)

// Reader reads whole frames from a blocking io.Reader such as a file holding
// a captured BGP byte stream.
type Reader struct {
	cr *chunkreader.ChunkReader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{
		cr: chunkreader.NewChunkReader(r),
	}
}

// ReadFrame reads the next frame. io.EOF is returned when the stream ends
// before another header is complete, ErrTruncated when it ends inside a body.
func (r *Reader) ReadFrame() (Frame, error) {
	header, err := r.cr.Next(HeaderLen)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Frame{}, io.EOF
		}
		return Frame{}, err
	}

	hdr, err := DecodeHeader(header)
	if err != nil && !errors.Is(err, ErrUnknownMessageType) {
		return Frame{Header: hdr}, err
	}

	raw := make([]byte, hdr.Length)
	copy(raw, header)

	if n := hdr.BodyLen(); n > 0 {
		body, err := r.cr.Next(n)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return Frame{Header: hdr}, fmt.Errorf("%s body: %w", msgTypeName(hdr.Type), ErrTruncated)
			}
			return Frame{Header: hdr}, err
		}
		copy(raw[HeaderLen:], body)
	}

	return Frame{
		Header: hdr,
		Raw:    raw,
	}, nil
}

// ReadMessage reads and decodes the next message. After a *FrameError the
// reader is positioned at the following frame.
func (r *Reader) ReadMessage() (*BGPMessage, error) {
	fr, err := r.ReadFrame()
	if err != nil {
		return nil, err
	}

	return fr.Decode()
}
