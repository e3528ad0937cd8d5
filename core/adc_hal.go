package core

// PinMode selects a pin's electrical mode.
type PinMode uint8

const (
	PinModeAnalog PinMode = iota + 1
)

// ClockDomain names a peripheral clock gate.
type ClockDomain uint8

const (
	ClockDMA ClockDomain = iota + 1
	ClockADC
)

func (c ClockDomain) String() string {
	switch c {
	case ClockDMA:
		return "dma"
	case ClockADC:
		return "adc"
	default:
		return "clock" + utoa(uint32(c))
	}
}

// DMASource selects the peripheral register a DMA transfer reads from.
type DMASource uint8

const (
	// SourceConverterData is the converter's result register. Fixed address, never incremented.
	SourceConverterData DMASource = iota + 1
)

// Increment controls address auto-increment on the memory side of a transfer.
type Increment uint8

const (
	IncrementDisabled Increment = iota
	IncrementEnabled
)

// TransferWidth is the size of one DMA transfer unit.
type TransferWidth uint8

const (
	Width8 TransferWidth = iota + 1
	Width16
	Width32
)

// DMAMode selects one-shot or self re-arming transfers.
type DMAMode uint8

const (
	DMANormal DMAMode = iota + 1
	DMACircular
)

// DMAPriority is the arbitration priority of the transfer channel.
type DMAPriority uint8

const (
	PriorityLow DMAPriority = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityVeryHigh
)

// DMADescriptor describes the converter-to-memory transfer.
type DMADescriptor struct {
	Source          DMASource
	Dest            *uint16 // first sample slot
	Count           uint16  // transfers per round
	MemoryIncrement Increment
	Width           TransferWidth
	Mode            DMAMode
	Priority        DMAPriority
}

// ScanMode enables walking the rank table instead of converting one input.
type ScanMode uint8

const (
	ScanDisabled ScanMode = iota
	ScanEnabled
)

// ConversionMode selects single-shot or free-running conversion.
type ConversionMode uint8

const (
	ConversionSingle ConversionMode = iota + 1
	ConversionContinuous
)

// TriggerSource selects what starts a conversion round.
type TriggerSource uint8

const (
	// TriggerSoftware means no external trigger; conversion starts on StartConversion.
	TriggerSoftware TriggerSource = iota + 1
)

// DataAlign is the placement of the sample inside the 16-bit result word.
type DataAlign uint8

const (
	AlignRight DataAlign = iota + 1
	AlignLeft
)

// ConverterMode is the converter-wide configuration.
type ConverterMode struct {
	Scan       ScanMode
	Conversion ConversionMode
	Trigger    TriggerSource
	Align      DataAlign
	Length     uint8 // number of ranked inputs per round
}

// ADCDriver is the hardware primitive interface that core code uses.
// Platform-specific implementations program the actual registers. Every call is
// synchronous; an error means the hardware could not be programmed.
type ADCDriver interface {
	// SetPinMode configures every pin in mask on port.
	SetPinMode(port Port, mask PinMask, mode PinMode) error

	// EnableClock ungates a peripheral clock domain.
	EnableClock(domain ClockDomain) error

	// ConfigureDMA programs and arms the transfer channel.
	ConfigureDMA(desc DMADescriptor) error

	// ConfigureConverter programs the converter-wide mode.
	ConfigureConverter(mode ConverterMode) error

	// SetChannelRank places input at position rank (1-based) of the scan sequence.
	SetChannelRank(input PhysicalInput, rank uint8, timing SampleTiming) error

	// EnableDMARequest makes the converter raise a DMA request per result.
	EnableDMARequest() error

	// EnableConverter powers the converter up.
	EnableConverter() error

	ResetCalibration() error
	CalibrationResetDone() bool
	StartCalibration() error
	CalibrationDone() bool

	// StartConversion issues the software trigger. The converter free-runs from here.
	StartConversion() error
}

// Global singleton used by core code.
var adcDriver ADCDriver

// SetADCDriver is called by target-specific code to register its driver.
func SetADCDriver(d ADCDriver) {
	adcDriver = d
}

// MustADC returns the configured driver or panics if missing.
func MustADC() ADCDriver {
	if adcDriver == nil {
		panic("ADC driver not configured")
	}
	return adcDriver
}
