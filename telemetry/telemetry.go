// Package telemetry frames sample-buffer snapshots for the host link.
// The framing follows the Klipper block layout: length, sequence, payload,
// CRC16 and a trailing sync byte.
package telemetry

// Frame constants
const (
	FrameHeaderSize  = 2
	FrameTrailerSize = 3
	FrameLengthMin   = FrameHeaderSize + FrameTrailerSize
	FrameLengthMax   = 64
	FramePositionLen = 0
	FramePositionSeq = 1
	FrameTrailerCRC  = 3
	FrameTrailerSync = 1
	FrameValueSync   = 0x7E
	FrameDest        = 0x10
	FrameSeqMask     = 0x0F
)
