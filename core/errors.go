package core

import "errors"

var (
	// ErrChannelNotEnabled is returned when reading a channel that was never activated.
	ErrChannelNotEnabled = errors.New("analog channel not enabled")

	// ErrInvalidChannelSet is returned when a channel list handed to the
	// sequencer is empty, not in slot order or does not match its buffer.
	ErrInvalidChannelSet = errors.New("invalid analog channel set")

	// ErrAlreadyStarted is returned by InitAnalog after a successful bring-up.
	ErrAlreadyStarted = errors.New("analog subsystem already started")
)

// HardwareFault reports a hardware-programming primitive that could not do its job.
// It is terminal: the analog subsystem has no degraded mode and no retry.
type HardwareFault struct {
	Step string
	Err  error
}

func (f *HardwareFault) Error() string {
	if f.Err == nil {
		return "adc hardware fault at " + f.Step
	}
	return "adc hardware fault at " + f.Step + ": " + f.Err.Error()
}

func (f *HardwareFault) Unwrap() error {
	return f.Err
}

// IsHardwareFault reports whether err carries a HardwareFault.
func IsHardwareFault(err error) bool {
	var f *HardwareFault
	return errors.As(err, &f)
}
