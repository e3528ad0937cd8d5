// Analog channel catalog
// Logical sensing roles, their physical wiring and the per-channel capture config
package core

// LogicalChannel identifies a sensing role independent of the pin that implements it.
// The numeric order is the activation priority order and must never change:
// downstream code relies on battery, rssi, external1, current landing in that
// order in the sample buffer.
type LogicalChannel uint8

const (
	ChannelBattery LogicalChannel = iota
	ChannelRSSI
	ChannelExternal1
	ChannelCurrent

	// ChannelCount is the size of every per-channel table
	ChannelCount = 4
)

var channelNames = [ChannelCount]string{
	ChannelBattery:   "battery",
	ChannelRSSI:      "rssi",
	ChannelExternal1: "external1",
	ChannelCurrent:   "current",
}

func (c LogicalChannel) String() string {
	if int(c) >= ChannelCount {
		return "channel" + utoa(uint32(c))
	}
	return channelNames[c]
}

// Valid reports whether c is a member of the catalog.
func (c LogicalChannel) Valid() bool {
	return int(c) < ChannelCount
}

// ParseLogicalChannel maps a channel name back to its identity.
func ParseLogicalChannel(name string) (LogicalChannel, bool) {
	for i, n := range channelNames {
		if n == name {
			return LogicalChannel(i), true
		}
	}
	return 0, false
}

// Port identifies a GPIO port (STM32) or pad bank (RP2040).
type Port uint8

const (
	PortA Port = iota
	PortB
	PortC
	PortBank0

	portCount = 4
)

var portNames = [portCount]string{"PA", "PB", "PC", "GPIO"}

func (p Port) String() string {
	if int(p) >= portCount {
		return "port" + utoa(uint32(p))
	}
	return portNames[p]
}

// PinMask is a bitmask of pin numbers within a single port.
type PinMask uint32

// Pin is a single pin on a port.
type Pin struct {
	Port   Port
	Number uint8
}

// Mask returns the single-bit mask for the pin within its port.
func (p Pin) Mask() PinMask {
	return PinMask(1) << p.Number
}

// valid reports whether the pin fits a port and a PinMask.
func (p Pin) valid() bool {
	return int(p.Port) < portCount && p.Number < 32
}

func (p Pin) String() string {
	return p.Port.String() + utoa(uint32(p.Number))
}

// PhysicalInput is the converter's input selector (ADC_INx on STM32, AINx on RP2040).
type PhysicalInput uint8

func (in PhysicalInput) String() string {
	return "IN" + utoa(uint32(in))
}

// SampleTiming is the converter sample-and-hold duration, in ADC clock cycles.
type SampleTiming uint8

const (
	SampleTime1_5 SampleTiming = iota
	SampleTime7_5
	SampleTime13_5
	SampleTime28_5
	SampleTime41_5
	SampleTime55_5
	SampleTime71_5
	SampleTime239_5
)

// DefaultSampleTiming is used for every channel: the slowest and most stable option.
// It is not tunable per channel.
const DefaultSampleTiming = SampleTime239_5

// ChannelConfig is the resolved capture configuration for one logical channel.
// Slot is only meaningful when Enabled is set.
type ChannelConfig struct {
	Channel LogicalChannel
	Enabled bool
	Pin     Pin
	Input   PhysicalInput
	Slot    uint8 // position in the DMA transfer sequence
	Timing  SampleTiming
}

// ActivationRequest carries the feature flags for optional channels.
// The battery channel is always active and has no flag.
// Flags for features a board cannot serve are ignored.
type ActivationRequest struct {
	EnableRSSI         bool
	EnableCurrentMeter bool
	EnableExternal1    bool
}

// wants reports whether the request asks for an optional channel.
func (r ActivationRequest) wants(ch LogicalChannel) bool {
	switch ch {
	case ChannelBattery:
		return true
	case ChannelRSSI:
		return r.EnableRSSI
	case ChannelExternal1:
		return r.EnableExternal1
	case ChannelCurrent:
		return r.EnableCurrentMeter
	default:
		return false
	}
}
