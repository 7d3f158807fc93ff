package packet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var openInput = msgBytes(OpenMsg, 4, 253, 232, 0, 90, 192, 0, 2, 1, 0)

// testStream returns a stream of several messages of every kind
func testStream() []byte {
	var stream []byte
	stream = append(stream, msgBytes(KeepaliveMsg)...)
	stream = append(stream, openInput...)
	stream = append(stream, msgBytes(UpdateMsg, updateInput...)...)
	stream = append(stream, msgBytes(NotificationMsg, 6, 2, 1, 2, 3)...)
	stream = append(stream, msgBytes(KeepaliveMsg)...)
	return stream
}

func TestFramerKeepalive(t *testing.T) {
	f := NewFramer()
	frames, err := f.Feed(msgBytes(KeepaliveMsg))
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, 0, f.Buffered())

	assert.Equal(t, BGPHeader{Length: 19, Type: KeepaliveMsg}, frames[0].Header)
	assert.Len(t, frames[0].Body(), 0)

	msg, err := frames[0].Decode()
	require.NoError(t, err)
	assert.Equal(t, &BGPKeepalive{}, msg.Body)
}

func TestFramerTwoMessages(t *testing.T) {
	input := append(msgBytes(KeepaliveMsg), openInput...)

	f := NewFramer()
	frames, err := f.Feed(input)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, 0, f.Buffered())

	assert.Equal(t, uint8(KeepaliveMsg), frames[0].Header.Type)
	assert.Equal(t, uint8(OpenMsg), frames[1].Header.Type)
	assert.Equal(t, openInput, frames[1].Raw)

	msg, err := frames[1].Decode()
	require.NoError(t, err)
	assert.Equal(t, &BGPOpen{
		Version:       4,
		AS:            65000,
		HoldTime:      90,
		BGPIdentifier: 3221225985,
	}, msg.Body)
}

func TestFramerIncomplete(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		buffered int
	}{
		{
			name:     "Empty",
			input:    []byte{},
			buffered: 0,
		},
		{
			name:     "Partial header",
			input:    marker[:10],
			buffered: 10,
		},
		{
			name:     "Header declares more than available",
			input:    append(append([]byte{}, marker...), 0, 25, NotificationMsg, 6),
			buffered: 20,
		},
	}

	for _, test := range tests {
		f := NewFramer()
		f.Write(test.input)

		_, err := f.Next()
		assert.True(t, errors.Is(err, ErrIncompleteFrame), test.name)
		assert.True(t, errors.Is(err, ErrTruncated), test.name)
		assert.Equal(t, test.buffered, f.Buffered(), test.name)
		assert.Equal(t, test.input, f.Pending(), test.name)
	}
}

func TestFramerRetry(t *testing.T) {
	input := msgBytes(NotificationMsg, 6, 2, 1, 2, 3, 4)
	require.Len(t, input, 25)

	f := NewFramer()
	frames, err := f.Feed(input[:20])
	require.NoError(t, err)
	assert.Len(t, frames, 0)
	assert.Equal(t, 20, f.Buffered())

	frames, err = f.Feed(input[20:])
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, input, frames[0].Raw)
	assert.Equal(t, 0, f.Buffered())
}

func TestFramerByteByByte(t *testing.T) {
	stream := testStream()

	all := NewFramer()
	expected, err := all.Feed(stream)
	require.NoError(t, err)
	require.Len(t, expected, 5)

	single := NewFramer()
	var frames []Frame
	for i := range stream {
		res, err := single.Feed(stream[i : i+1])
		require.NoError(t, err)
		frames = append(frames, res...)
	}

	assert.Equal(t, expected, frames)
	assert.Equal(t, 0, single.Buffered())
}

func TestFramerSplitMessage(t *testing.T) {
	stream := testStream()

	// Every split point has to produce the same frames
	f := NewFramer()
	expected, err := f.Feed(stream)
	require.NoError(t, err)

	for i := 0; i <= len(stream); i++ {
		f := NewFramer()
		first, err := f.Feed(stream[:i])
		require.NoError(t, err)
		second, err := f.Feed(stream[i:])
		require.NoError(t, err)

		assert.Equal(t, expected, append(first, second...), "split at %d", i)
	}
}

func TestFramerMalformedFrame(t *testing.T) {
	var stream []byte
	stream = append(stream, msgBytes(UpdateMsg, 0, 9, 8, 10)...) // withdrawn length beyond body
	stream = append(stream, msgBytes(7)...)                       // unknown type
	stream = append(stream, msgBytes(KeepaliveMsg)...)

	f := NewFramer()
	frames, err := f.Feed(stream)
	require.NoError(t, err)
	require.Len(t, frames, 3)

	_, err = frames[0].Decode()
	var ferr *FrameError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, uint8(UpdateMsg), ferr.Header.Type)
	assert.True(t, errors.Is(err, ErrTruncated))

	_, err = frames[1].Decode()
	assert.True(t, errors.Is(err, ErrUnknownMessageType))

	msg, err := frames[2].Decode()
	require.NoError(t, err)
	assert.Equal(t, &BGPKeepalive{}, msg.Body)
}

func TestFramerBadLength(t *testing.T) {
	input := append(append([]byte{}, marker...), 0, 18, KeepaliveMsg)
	input = append(input, msgBytes(KeepaliveMsg)...)

	f := NewFramer()
	frames, err := f.Feed(input)
	assert.True(t, errors.Is(err, ErrBadMessageLength))
	assert.Len(t, frames, 0)
	assert.Equal(t, len(input), f.Buffered())

	f.Reset()
	assert.Equal(t, 0, f.Buffered())

	frames, err = f.Feed(msgBytes(KeepaliveMsg))
	assert.NoError(t, err)
	assert.Len(t, frames, 1)
}

func TestFramerFramesDoNotAlias(t *testing.T) {
	f := NewFramer()
	frames, err := f.Feed(append(msgBytes(KeepaliveMsg), openInput[:5]...))
	require.NoError(t, err)
	require.Len(t, frames, 1)

	first := append([]byte{}, frames[0].Raw...)
	_, err = f.Feed(openInput[5:])
	require.NoError(t, err)
	assert.Equal(t, first, frames[0].Raw)
}
