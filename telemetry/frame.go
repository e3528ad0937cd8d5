package telemetry

import (
	"errors"

	"fcadc/core"
)

var (
	ErrFrameTooLarge = errors.New("snapshot does not fit in one frame")
	ErrBadPayload    = errors.New("malformed snapshot payload")
	ErrOutputFull    = errors.New("output buffer full")
)

// Snapshot is one decoded frame: the sample buffer contents in slot order.
type Snapshot struct {
	Seq     uint8
	Board   core.BoardID
	Samples []core.Sample
}

// Value returns the sample for ch if the frame carries it.
func (s Snapshot) Value(ch core.LogicalChannel) (uint16, bool) {
	for _, smp := range s.Samples {
		if smp.Channel == ch {
			return smp.Value, true
		}
	}
	return 0, false
}

// EncodeSnapshot appends one complete frame to output. On error nothing is
// left behind: output is rolled back to where the frame started.
func EncodeSnapshot(output OutputBuffer, seq uint8, board core.BoardID, samples []core.Sample) error {
	start := output.CurPosition()
	output.Output([]byte{0, FrameDest | seq&FrameSeqMask})

	EncodeVLQUint(output, uint32(board))
	EncodeVLQUint(output, uint32(len(samples)))
	for _, s := range samples {
		EncodeVLQUint(output, uint32(s.Channel))
		EncodeVLQUint(output, uint32(s.Value))
	}

	msgLen := output.CurPosition() - start + FrameTrailerSize
	if msgLen > FrameLengthMax {
		output.Truncate(start)
		return ErrFrameTooLarge
	}
	if output.Overflowed() {
		output.Truncate(start)
		return ErrOutputFull
	}
	output.Update(start+FramePositionLen, byte(msgLen))

	crc := CRC16(output.DataSince(start))
	output.Output([]byte{byte(crc >> 8), byte(crc), FrameValueSync})
	if output.Overflowed() {
		output.Truncate(start)
		return ErrOutputFull
	}
	return nil
}

func decodePayload(seq uint8, payload []byte) (Snapshot, error) {
	board, err := DecodeVLQUint(&payload)
	if err != nil {
		return Snapshot{}, err
	}
	count, err := DecodeVLQUint(&payload)
	if err != nil {
		return Snapshot{}, err
	}
	if count > core.ChannelCount {
		return Snapshot{}, ErrBadPayload
	}

	snap := Snapshot{Seq: seq, Board: core.BoardID(board), Samples: make([]core.Sample, 0, count)}
	for i := uint32(0); i < count; i++ {
		ch, err := DecodeVLQUint(&payload)
		if err != nil {
			return Snapshot{}, err
		}
		v, err := DecodeVLQUint(&payload)
		if err != nil {
			return Snapshot{}, err
		}
		if !core.LogicalChannel(ch).Valid() || v > 0xFFFF {
			return Snapshot{}, ErrBadPayload
		}
		snap.Samples = append(snap.Samples, core.Sample{Channel: core.LogicalChannel(ch), Value: uint16(v)})
	}
	if len(payload) != 0 {
		return Snapshot{}, ErrBadPayload
	}
	return snap, nil
}

// Decoder splits a byte stream into snapshots. It resynchronises on the sync
// byte after any framing or CRC error.
type Decoder struct {
	buf          []byte
	synchronized bool

	// Counters for link diagnostics
	Frames       uint32
	CRCErrors    uint32
	BadFrames    uint32 // intact frames whose payload did not decode
	DroppedBytes uint32 // bytes skipped while resynchronising
}

// NewDecoder creates a Decoder. It starts synchronized; a stream opened mid-frame
// fails the length or CRC check and resynchronises on the next sync byte.
func NewDecoder() *Decoder {
	return &Decoder{synchronized: true}
}

// Feed consumes data and returns every complete snapshot found.
func (d *Decoder) Feed(data []byte) []Snapshot {
	d.buf = append(d.buf, data...)
	var out []Snapshot

	for len(d.buf) > 0 {
		if !d.synchronized {
			i := 0
			for i < len(d.buf) && d.buf[i] != FrameValueSync {
				i++
			}
			if i == len(d.buf) {
				d.DroppedBytes += uint32(i)
				d.buf = d.buf[:0]
				break
			}
			d.DroppedBytes += uint32(i)
			d.buf = d.buf[i+1:]
			d.synchronized = true
			continue
		}

		if d.buf[0] == FrameValueSync {
			d.buf = d.buf[1:]
			continue
		}
		if len(d.buf) < FrameLengthMin {
			break
		}

		msgLen := int(d.buf[FramePositionLen])
		seq := d.buf[FramePositionSeq]
		if msgLen < FrameLengthMin || msgLen > FrameLengthMax || seq&^FrameSeqMask != FrameDest {
			d.synchronized = false
			continue
		}
		if len(d.buf) < msgLen {
			break
		}
		if d.buf[msgLen-FrameTrailerSync] != FrameValueSync {
			d.synchronized = false
			continue
		}

		frameCRC := uint16(d.buf[msgLen-FrameTrailerCRC])<<8 | uint16(d.buf[msgLen-FrameTrailerCRC+1])
		if frameCRC != CRC16(d.buf[:msgLen-FrameTrailerSize]) {
			d.CRCErrors++
			d.synchronized = false
			continue
		}

		snap, err := decodePayload(seq&FrameSeqMask, d.buf[FrameHeaderSize:msgLen-FrameTrailerSize])
		d.buf = d.buf[msgLen:]
		if err != nil {
			d.BadFrames++
			continue
		}
		d.Frames++
		out = append(out, snap)
	}

	if len(d.buf) == 0 {
		d.buf = nil
	}
	return out
}
