//go:build rp2040

package main

import (
	"errors"
	"machine"
	"runtime/volatile"
	"unsafe"

	"fcadc/core"
)

// RP2040 peripheral memory map
const (
	resetsBase = 0x4000C000
	adcBase    = 0x4004C000
	dmaBase    = 0x50000000

	adcFIFOAddr = adcBase + 0x0C

	dmaChannelStride     = 0x40
	dmaMultiChanTrigger  = dmaBase + 0x430
	dmaDataChannel       = 0
	dmaControlChannel    = 1
	dmaWriteAddrTrigOffs = 0x2C // AL2_WRITE_ADDR_TRIG
)

// dmaChannelRegs is one channel's register block including its aliases
type dmaChannelRegs struct {
	readAddr   volatile.Register32
	writeAddr  volatile.Register32
	transCount volatile.Register32
	ctrlTrig   volatile.Register32
	al1Ctrl    volatile.Register32
}

func dmaChannel(n uintptr) *dmaChannelRegs {
	return (*dmaChannelRegs)(unsafe.Pointer(uintptr(dmaBase + n*dmaChannelStride)))
}

var (
	resetsRESET     = (*volatile.Register32)(unsafe.Pointer(uintptr(resetsBase + 0x00)))
	resetsRESETDONE = (*volatile.Register32)(unsafe.Pointer(uintptr(resetsBase + 0x08)))

	adcCS  = (*volatile.Register32)(unsafe.Pointer(uintptr(adcBase + 0x00)))
	adcFCS = (*volatile.Register32)(unsafe.Pointer(uintptr(adcBase + 0x08)))
	adcDIV = (*volatile.Register32)(unsafe.Pointer(uintptr(adcBase + 0x10)))

	dmaTrigger = (*volatile.Register32)(unsafe.Pointer(uintptr(dmaMultiChanTrigger)))
)

const (
	resetADC = 1 << 0
	resetDMA = 1 << 2

	adcCS_EN         = 1 << 0
	adcCS_START_ONCE = 1 << 2
	adcCS_START_MANY = 1 << 3
	adcCS_READY      = 1 << 8
	adcCS_AINSEL_Pos = 12
	adcCS_RROBIN_Pos = 16

	adcFCS_EN         = 1 << 0
	adcFCS_DREQ_EN    = 1 << 3
	adcFCS_THRESH_Pos = 24

	dmaCTRL_EN            = 1 << 0
	dmaCTRL_HIGH_PRIORITY = 1 << 1
	dmaCTRL_SIZE_HALFWORD = 1 << 2
	dmaCTRL_SIZE_WORD     = 2 << 2
	dmaCTRL_INCR_WRITE    = 1 << 5
	dmaCTRL_CHAIN_TO_Pos  = 11
	dmaCTRL_TREQ_Pos      = 15

	dreqADC       = 36
	treqUnpaced   = 0x3F
	adcInputCount = 5 // AIN0-AIN3 plus the temperature sensor

	// Each conversion takes 96 cycles of the 48MHz ADC clock
	adcConversionCycles = 96
)

// Extra ADC clock cycles between conversions for each sample timing, so the
// round rate tracks the requested settling time.
var timingPause = [...]uint32{
	core.SampleTime1_5:   0,
	core.SampleTime7_5:   300,
	core.SampleTime13_5:  600,
	core.SampleTime28_5:  1400,
	core.SampleTime41_5:  2000,
	core.SampleTime55_5:  2700,
	core.SampleTime71_5:  3500,
	core.SampleTime239_5: 11900,
}

var (
	errUnsupportedPin   = errors.New("pin has no analog function")
	errUnsupportedMode  = errors.New("unsupported converter mode")
	errBadDescriptor    = errors.New("unsupported dma descriptor")
	errRoundRobinOrder  = errors.New("round robin samples inputs in ascending order only")
	errInputOutOfRange  = errors.New("analog input out of range")
	errConverterMissing = errors.New("converter not configured")
)

// RPADCDriver implements core.ADCDriver with the round-robin ADC and two DMA
// channels: one moves FIFO samples into the buffer, the other re-arms it so the
// transfer repeats forever.
type RPADCDriver struct {
	mode    core.ConverterMode
	modeSet bool

	ranked    uint8
	lastInput core.PhysicalInput
	rrobin    uint32
	pause     uint32

	// Reloaded into the data channel's write address by the control channel
	bufferAddr uint32
}

// NewRPADCDriver constructs the driver; nothing is touched until BringUp.
func NewRPADCDriver() *RPADCDriver {
	return &RPADCDriver{}
}

// SetPinMode disconnects the digital input of GPIO26-29 so they can be sampled.
func (d *RPADCDriver) SetPinMode(port core.Port, mask core.PinMask, mode core.PinMode) error {
	if port != core.PortBank0 || mode != core.PinModeAnalog {
		return errUnsupportedPin
	}
	const analogPins = core.PinMask(0xF << 26)
	if mask&^analogPins != 0 {
		return errUnsupportedPin
	}
	for pin := 26; pin < 30; pin++ {
		if mask&(1<<pin) != 0 {
			machine.Pin(pin).Configure(machine.PinConfig{Mode: machine.PinAnalog})
		}
	}
	return nil
}

// EnableClock takes the peripheral out of reset. clk_adc is set up by the runtime.
func (d *RPADCDriver) EnableClock(domain core.ClockDomain) error {
	var bit uint32
	switch domain {
	case core.ClockDMA:
		bit = resetDMA
	case core.ClockADC:
		bit = resetADC
	default:
		return errUnsupportedMode
	}
	resetsRESET.ClearBits(bit)
	for !resetsRESETDONE.HasBits(bit) {
	}
	return nil
}

// ConfigureDMA programs both channels without triggering them.
func (d *RPADCDriver) ConfigureDMA(desc core.DMADescriptor) error {
	if desc.Source != core.SourceConverterData || desc.Width != core.Width16 || desc.Dest == nil || desc.Count == 0 {
		return errBadDescriptor
	}

	d.bufferAddr = uint32(uintptr(unsafe.Pointer(desc.Dest)))

	data := dmaChannel(dmaDataChannel)
	ctrl := uint32(dmaCTRL_EN|dmaCTRL_SIZE_HALFWORD) | dreqADC<<dmaCTRL_TREQ_Pos
	if desc.Priority >= core.PriorityHigh {
		ctrl |= dmaCTRL_HIGH_PRIORITY
	}
	if desc.MemoryIncrement == core.IncrementEnabled {
		ctrl |= dmaCTRL_INCR_WRITE
	}
	// Chaining to itself disables chaining
	chainTo := uint32(dmaDataChannel)
	if desc.Mode == core.DMACircular {
		chainTo = dmaControlChannel
	}
	ctrl |= chainTo << dmaCTRL_CHAIN_TO_Pos

	data.readAddr.Set(adcFIFOAddr)
	data.writeAddr.Set(d.bufferAddr)
	data.transCount.Set(uint32(desc.Count))
	data.al1Ctrl.Set(ctrl)

	if desc.Mode == core.DMACircular {
		c := dmaChannel(dmaControlChannel)
		c.readAddr.Set(uint32(uintptr(unsafe.Pointer(&d.bufferAddr))))
		c.writeAddr.Set(uint32(dmaBase + dmaDataChannel*dmaChannelStride + dmaWriteAddrTrigOffs))
		c.transCount.Set(1)
		c.al1Ctrl.Set(dmaCTRL_EN | dmaCTRL_SIZE_WORD |
			dmaControlChannel<<dmaCTRL_CHAIN_TO_Pos | treqUnpaced<<dmaCTRL_TREQ_Pos)
	}
	return nil
}

func (d *RPADCDriver) ConfigureConverter(mode core.ConverterMode) error {
	// Results are always right aligned and there is no hardware trigger input
	if mode.Align != core.AlignRight || mode.Trigger != core.TriggerSoftware ||
		mode.Length == 0 || mode.Length > adcInputCount {
		return errUnsupportedMode
	}
	d.mode = mode
	d.modeSet = true
	d.ranked = 0
	d.rrobin = 0
	d.pause = 0
	return nil
}

// SetChannelRank builds the round-robin set. Rank 1 is the start input and
// later ranks must follow in ascending input order.
func (d *RPADCDriver) SetChannelRank(input core.PhysicalInput, rank uint8, timing core.SampleTiming) error {
	if !d.modeSet {
		return errConverterMissing
	}
	if input >= adcInputCount || int(timing) >= len(timingPause) {
		return errInputOutOfRange
	}
	if rank != d.ranked+1 || rank > d.mode.Length {
		return errRoundRobinOrder
	}
	if rank > 1 && input <= d.lastInput {
		return errRoundRobinOrder
	}

	if rank == 1 {
		adcCS.ReplaceBits(uint32(input), 0x7, adcCS_AINSEL_Pos)
	}
	d.rrobin |= 1 << input
	d.lastInput = input
	d.ranked = rank
	if p := timingPause[timing]; p > d.pause {
		d.pause = p
	}

	if rank == d.mode.Length && d.mode.Scan == core.ScanEnabled {
		adcCS.ReplaceBits(d.rrobin, 0x1F, adcCS_RROBIN_Pos)
	}
	return nil
}

// EnableDMARequest routes FIFO samples to DMA and arms the data channel.
func (d *RPADCDriver) EnableDMARequest() error {
	if !d.modeSet {
		return errConverterMissing
	}
	adcFCS.Set(adcFCS_EN | adcFCS_DREQ_EN | 1<<adcFCS_THRESH_Pos)
	dmaTrigger.Set(1 << dmaDataChannel)
	return nil
}

func (d *RPADCDriver) EnableConverter() error {
	adcCS.SetBits(adcCS_EN)
	return nil
}

// The RP2040 ADC has no self-calibration. The calibration phase only waits for
// the converter to report ready after power-up.
func (d *RPADCDriver) ResetCalibration() error {
	return nil
}

func (d *RPADCDriver) CalibrationResetDone() bool {
	return true
}

func (d *RPADCDriver) StartCalibration() error {
	return nil
}

func (d *RPADCDriver) CalibrationDone() bool {
	return adcCS.HasBits(adcCS_READY)
}

func (d *RPADCDriver) StartConversion() error {
	if d.mode.Conversion != core.ConversionContinuous {
		adcCS.SetBits(adcCS_START_ONCE)
		return nil
	}
	// DIV.INT counts ADC clocks between conversion starts
	adcDIV.Set((adcConversionCycles + d.pause) << 8)
	adcCS.SetBits(adcCS_START_MANY)
	return nil
}
