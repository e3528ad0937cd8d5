package core

const noSlot = -1

// SampleBuffer is the DMA destination: one 16-bit word per active channel,
// indexed by slot and rewritten by hardware for the life of the process.
// Software only reads it.
type SampleBuffer struct {
	samples []uint16
	slots   [ChannelCount]int8
}

// NewSampleBuffer allocates the buffer for a resolved channel set.
func NewSampleBuffer(channels []ChannelConfig) (*SampleBuffer, error) {
	if err := checkChannelSet(channels); err != nil {
		return nil, err
	}
	b := &SampleBuffer{samples: make([]uint16, len(channels))}
	for i := range b.slots {
		b.slots[i] = noSlot
	}
	for _, c := range channels {
		b.slots[c.Channel] = int8(c.Slot)
	}
	return b, nil
}

// Len is the number of active channels.
func (b *SampleBuffer) Len() int {
	return len(b.samples)
}

// Base returns the address the DMA engine writes slot 0 to.
func (b *SampleBuffer) Base() *uint16 {
	return &b.samples[0]
}

// Enabled reports whether ch has a slot.
func (b *SampleBuffer) Enabled(ch LogicalChannel) bool {
	return ch.Valid() && b.slots[ch] != noSlot
}

// Slot returns the DMA slot of ch.
func (b *SampleBuffer) Slot(ch LogicalChannel) (int, bool) {
	if !b.Enabled(ch) {
		return 0, false
	}
	return int(b.slots[ch]), true
}

// Read returns the most recent raw sample for ch. It never blocks.
func (b *SampleBuffer) Read(ch LogicalChannel) (uint16, error) {
	if !b.Enabled(ch) {
		return 0, ErrChannelNotEnabled
	}
	return loadSample(&b.samples[b.slots[ch]]), nil
}

// ReadSlot returns the raw sample at slot i.
func (b *SampleBuffer) ReadSlot(i int) uint16 {
	return loadSample(&b.samples[i])
}
