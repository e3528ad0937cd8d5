package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fcadc/core"
)

func encode(t *testing.T, seq uint8, board core.BoardID, samples []core.Sample) []byte {
	t.Helper()
	out := NewScratchOutput()
	require.NoError(t, EncodeSnapshot(out, seq, board, samples))
	return append([]byte(nil), out.Result()...)
}

var naze = []core.Sample{
	{Channel: core.ChannelBattery, Value: 1620},
	{Channel: core.ChannelRSSI, Value: 0},
	{Channel: core.ChannelCurrent, Value: 4095},
}

func TestCRC16(t *testing.T) {
	assert.Equal(t, uint16(0xFFFF), CRC16(nil))
	// CRC-16/MCRF4XX check value
	assert.Equal(t, uint16(0x6F91), CRC16([]byte("123456789")))
	assert.NotEqual(t, CRC16([]byte{1, 2, 3}), CRC16([]byte{1, 2, 4}))
}

func TestVLQBoundaries(t *testing.T) {
	cases := []struct {
		v    int32
		size int
	}{
		{0, 1},
		{95, 1},
		{96, 2},
		{-32, 1},
		{-33, 2},
		{4095, 2},
		{12288, 3},
		{65535, 3},
		{1 << 26, 4},
		{3 << 26, 5},
		{-1 << 30, 5},
	}
	for _, tc := range cases {
		out := NewScratchOutput()
		EncodeVLQInt(out, tc.v)
		data := out.Result()
		assert.Len(t, data, tc.size, "value %d", tc.v)

		got, err := DecodeVLQInt(&data)
		require.NoError(t, err)
		assert.Equal(t, tc.v, got)
		assert.Empty(t, data)
	}
}

func TestVLQTruncated(t *testing.T) {
	data := []byte{0x83, 0xFF}
	_, err := DecodeVLQUint(&data)
	assert.ErrorIs(t, err, ErrBufferTooSmall)

	data = []byte{0x81, 0x81, 0x81, 0x81, 0x81, 0x01}
	_, err = DecodeVLQUint(&data)
	assert.ErrorIs(t, err, ErrInvalidVLQ)

	var empty []byte
	_, err = DecodeVLQUint(&empty)
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestEncodeSnapshotLayout(t *testing.T) {
	frame := encode(t, 3, core.BoardNaze, naze)

	assert.Equal(t, int(frame[FramePositionLen]), len(frame))
	assert.Equal(t, byte(FrameDest|3), frame[FramePositionSeq])
	assert.Equal(t, byte(FrameValueSync), frame[len(frame)-1])

	crc := CRC16(frame[:len(frame)-FrameTrailerSize])
	assert.Equal(t, byte(crc>>8), frame[len(frame)-3])
	assert.Equal(t, byte(crc), frame[len(frame)-2])
}

func TestDecoderSplitFeeds(t *testing.T) {
	stream := append(encode(t, 1, core.BoardNaze, naze), encode(t, 2, core.BoardNaze, naze[:1])...)

	d := NewDecoder()
	var snaps []Snapshot
	for _, b := range stream {
		snaps = append(snaps, d.Feed([]byte{b})...)
	}
	require.Len(t, snaps, 2)

	assert.Equal(t, uint8(1), snaps[0].Seq)
	assert.Equal(t, core.BoardNaze, snaps[0].Board)
	assert.Equal(t, naze, snaps[0].Samples)
	v, ok := snaps[0].Value(core.ChannelCurrent)
	assert.True(t, ok)
	assert.Equal(t, uint16(4095), v)
	_, ok = snaps[1].Value(core.ChannelRSSI)
	assert.False(t, ok)
	assert.Equal(t, uint32(2), d.Frames)
}

func TestDecoderResyncAfterCorruption(t *testing.T) {
	good := encode(t, 4, core.BoardCC3D, naze[:1])
	bad := encode(t, 5, core.BoardCC3D, naze[:1])
	bad[FrameHeaderSize] ^= 0x01

	stream := append([]byte{0x01, 0x02}, bad...)
	stream = append(stream, good...)

	d := NewDecoder()
	snaps := d.Feed(stream)
	require.Len(t, snaps, 1)
	assert.Equal(t, uint8(4), snaps[0].Seq)
	assert.Equal(t, uint32(1), d.Frames)
}

func TestDecoderCountsCRCErrors(t *testing.T) {
	bad := encode(t, 6, core.BoardCC3D, naze[:1])
	bad[len(bad)-2] ^= 0xFF

	d := NewDecoder()
	assert.Empty(t, d.Feed(bad))
	assert.Equal(t, uint32(1), d.CRCErrors)

	assert.Len(t, d.Feed(encode(t, 7, core.BoardCC3D, naze[:1])), 1)
}

// frameAround wraps payload in a header and a valid CRC trailer.
func frameAround(seq uint8, payload []byte) []byte {
	msgLen := FrameHeaderSize + len(payload) + FrameTrailerSize
	frame := append([]byte{byte(msgLen), FrameDest | seq}, payload...)
	crc := CRC16(frame)
	return append(frame, byte(crc>>8), byte(crc), FrameValueSync)
}

func TestDecoderCountsBadFramesAndBytesSeparately(t *testing.T) {
	// count 9 exceeds the channel catalog
	bad := frameAround(2, []byte{0, 9})
	stream := append([]byte{0x01, 0x02, 0x03, FrameValueSync}, bad...)

	d := NewDecoder()
	assert.Empty(t, d.Feed(stream))
	assert.Equal(t, uint32(1), d.BadFrames)
	assert.Equal(t, uint32(3), d.DroppedBytes)
	assert.Zero(t, d.CRCErrors)

	assert.Len(t, d.Feed(encode(t, 3, core.BoardNaze, naze)), 1)
	assert.Equal(t, uint32(1), d.BadFrames)
	assert.Equal(t, uint32(3), d.DroppedBytes)
}

func TestEncodeSnapshotTooLarge(t *testing.T) {
	samples := make([]core.Sample, 20)
	for i := range samples {
		samples[i] = core.Sample{Channel: core.ChannelBattery, Value: 0xFFFF}
	}
	out := NewScratchOutput()
	require.NoError(t, EncodeSnapshot(out, 0, core.BoardNaze, naze))
	first := append([]byte(nil), out.Result()...)

	assert.ErrorIs(t, EncodeSnapshot(out, 1, core.BoardNaze, samples), ErrFrameTooLarge)
	assert.Equal(t, first, out.Result(), "a rejected frame leaves no partial bytes")
}

func TestEncodeSnapshotOutputFull(t *testing.T) {
	out := NewScratchOutput()
	frame := encode(t, 0, core.BoardNaze, naze)

	written := 0
	for {
		err := EncodeSnapshot(out, 0, core.BoardNaze, naze)
		if err != nil {
			assert.ErrorIs(t, err, ErrOutputFull)
			break
		}
		written++
	}
	assert.Equal(t, 256/len(frame), written)
	assert.Len(t, out.Result(), written*len(frame))
	assert.False(t, out.Overflowed())

	// every frame kept in the buffer still decodes
	assert.Len(t, NewDecoder().Feed(out.Result()), written)
}
