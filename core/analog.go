// Analog capture subsystem
// Resolves the channel set once at boot, brings up the converter and exposes
// the hardware-refreshed samples to any number of readers.
package core

// Analog is a started capture subsystem. It is immutable after StartAnalog
// returns; the sample values behind it change only through DMA.
type Analog struct {
	board    Board
	channels []ChannelConfig
	table    [ChannelCount]ChannelConfig
	buf      *SampleBuffer
}

// Sample is one (channel, raw value) pair in slot order.
type Sample struct {
	Channel LogicalChannel
	Value   uint16
}

// StartAnalog resolves the channel set for board and req, allocates the sample
// buffer and runs the hardware bring-up on drv.
func StartAnalog(drv ADCDriver, board Board, req ActivationRequest) (*Analog, error) {
	channels, err := Resolve(board, req)
	if err != nil {
		return nil, err
	}
	buf, err := NewSampleBuffer(channels)
	if err != nil {
		return nil, err
	}

	DebugPrintln("[ADC] board " + board.Name + ", " + itoa(len(channels)) + " channel(s)")
	for _, c := range channels {
		DebugPrintln("[ADC]  slot " + itoa(int(c.Slot)) + " " + c.Channel.String() +
			" " + c.Pin.String() + " " + c.Input.String())
	}

	if err := BringUp(drv, channels, buf); err != nil {
		return nil, err
	}

	a := &Analog{board: board, channels: channels, buf: buf}
	for _, c := range channels {
		a.table[c.Channel] = c
	}
	return a, nil
}

// Board returns the board the subsystem was resolved for.
func (a *Analog) Board() Board {
	return a.board
}

// Channels returns a copy of the active channel set in slot order.
func (a *Analog) Channels() []ChannelConfig {
	out := make([]ChannelConfig, len(a.channels))
	copy(out, a.channels)
	return out
}

// Config returns the capture config of ch. Disabled channels come back with
// Enabled unset.
func (a *Analog) Config(ch LogicalChannel) ChannelConfig {
	if !ch.Valid() {
		return ChannelConfig{Channel: ch}
	}
	c := a.table[ch]
	c.Channel = ch
	return c
}

// Read returns the latest raw sample of ch, or ErrChannelNotEnabled.
func (a *Analog) Read(ch LogicalChannel) (uint16, error) {
	return a.buf.Read(ch)
}

// Buffer exposes the underlying sample buffer.
func (a *Analog) Buffer() *SampleBuffer {
	return a.buf
}

// Snapshot appends every active channel's latest value to dst in slot order.
func (a *Analog) Snapshot(dst []Sample) []Sample {
	for _, c := range a.channels {
		dst = append(dst, Sample{Channel: c.Channel, Value: a.buf.ReadSlot(int(c.Slot))})
	}
	return dst
}

// Global subsystem, written once by InitAnalog.
var (
	analog        *Analog
	analogStarted bool
	analogFault   error
)

// InitAnalog brings up the selected board's converter with the registered
// ADC driver. Only the first call runs the bring-up; a failed attempt is not
// retried on partly programmed hardware. Later calls return ErrAlreadyStarted.
func InitAnalog(req ActivationRequest) error {
	if analogStarted {
		return ErrAlreadyStarted
	}
	drv := MustADC()
	analogStarted = true

	a, err := StartAnalog(drv, SelectedBoard, req)
	if err != nil {
		analogFault = err
		return err
	}
	analog = a
	return nil
}

// AnalogFault returns the error of a failed InitAnalog, or nil.
func AnalogFault() error {
	return analogFault
}

// ReadAnalog reads ch from the global subsystem.
func ReadAnalog(ch LogicalChannel) (uint16, error) {
	if analog == nil {
		return 0, ErrChannelNotEnabled
	}
	return analog.Read(ch)
}

// AnalogChannels returns the global active channel set, nil before InitAnalog.
func AnalogChannels() []ChannelConfig {
	if analog == nil {
		return nil
	}
	return analog.Channels()
}

// GlobalAnalog returns the subsystem started by InitAnalog, or nil.
func GlobalAnalog() *Analog {
	return analog
}
