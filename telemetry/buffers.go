package telemetry

// OutputBuffer is where encoders write frame bytes
type OutputBuffer interface {
	// Output appends data
	Output(data []byte)

	// CurPosition returns the current write position
	CurPosition() int

	// Update overwrites a byte already written
	Update(pos int, val byte)

	// DataSince returns data from pos to the current position
	DataSince(pos int) []byte

	// Truncate drops everything written after pos
	Truncate(pos int)

	// Overflowed reports whether a write was dropped for lack of space
	// since the last Truncate or Reset
	Overflowed() bool
}

// ScratchOutput is an OutputBuffer over a fixed array, so frames can be built
// without heap allocation on the MCU.
type ScratchOutput struct {
	buf      [256]byte
	pos      int
	overflow bool
}

// NewScratchOutput creates a new ScratchOutput
func NewScratchOutput() *ScratchOutput {
	return &ScratchOutput{}
}

// Output appends data. A write that does not fit is dropped whole.
func (s *ScratchOutput) Output(data []byte) {
	if len(data) > len(s.buf)-s.pos {
		s.overflow = true
		return
	}
	s.pos += copy(s.buf[s.pos:], data)
}

func (s *ScratchOutput) CurPosition() int {
	return s.pos
}

func (s *ScratchOutput) Update(pos int, val byte) {
	if pos < s.pos {
		s.buf[pos] = val
	}
}

func (s *ScratchOutput) DataSince(pos int) []byte {
	if pos > s.pos {
		return nil
	}
	return s.buf[pos:s.pos]
}

func (s *ScratchOutput) Truncate(pos int) {
	if pos >= 0 && pos < s.pos {
		s.pos = pos
	}
	s.overflow = false
}

func (s *ScratchOutput) Overflowed() bool {
	return s.overflow
}

// Result returns everything written since the last Reset
func (s *ScratchOutput) Result() []byte {
	return s.buf[:s.pos]
}

// Reset empties the buffer
func (s *ScratchOutput) Reset() {
	s.pos = 0
	s.overflow = false
}
