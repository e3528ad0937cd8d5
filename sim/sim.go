// Package sim is a host-side converter + DMA engine that implements core.ADCDriver.
// It records every primitive call, enforces the bring-up ordering the real
// peripherals depend on, and fills the DMA destination one scan round at a time.
package sim

import (
	"errors"
	"strconv"
	"strings"
	"unsafe"

	"fcadc/core"
)

// Op names a recorded primitive.
type Op string

const (
	OpSetPinMode         Op = "set_pin_mode"
	OpEnableClock        Op = "enable_clock"
	OpConfigureDMA       Op = "configure_dma"
	OpConfigureConverter Op = "configure_converter"
	OpSetChannelRank     Op = "set_channel_rank"
	OpEnableDMARequest   Op = "enable_dma_request"
	OpEnableConverter    Op = "enable_converter"
	OpResetCalibration   Op = "reset_calibration"
	OpStartCalibration   Op = "start_calibration"
	OpStartConversion    Op = "start_conversion"
)

const (
	maxInputs               = 18
	defaultCalibrationPolls = 3
)

var (
	ErrInjected          = errors.New("injected failure")
	ErrClockGated        = errors.New("peripheral clock not enabled")
	ErrInvalidDescriptor = errors.New("invalid dma descriptor")
	ErrInvalidMode       = errors.New("invalid converter mode")
	ErrInvalidRank       = errors.New("invalid channel rank")
	ErrInvalidInput      = errors.New("invalid physical input")
	ErrNotEnabled        = errors.New("converter not enabled")
	ErrNotCalibrated     = errors.New("converter not calibrated")
	ErrNotConfigured     = errors.New("converter not configured")
)

// Call is one recorded primitive with its arguments.
type Call struct {
	Op   Op
	Args []uint32
}

func (c Call) String() string {
	var sb strings.Builder
	sb.WriteString(string(c.Op))
	for _, a := range c.Args {
		sb.WriteByte(' ')
		sb.WriteString(strconv.FormatUint(uint64(a), 10))
	}
	return sb.String()
}

// Generator produces the raw sample for input in the given round.
type Generator func(input core.PhysicalInput, round uint32) uint16

// DefaultGenerator encodes the input in the high byte and the round in the low byte,
// which makes misplaced samples easy to spot.
func DefaultGenerator(input core.PhysicalInput, round uint32) uint16 {
	return uint16(input+1)<<8 | uint16(round&0xFF)
}

// Peripheral is the simulated converter and DMA channel.
type Peripheral struct {
	// CalibrationPolls is how many polls each calibration phase reports busy.
	CalibrationPolls int
	Generator        Generator

	calls   []Call
	failOn  Op
	failErr error

	pins     [4]core.PinMask
	clocks   map[core.ClockDomain]bool
	desc     core.DMADescriptor
	dmaArmed bool
	dest     []uint16
	pos      int

	mode       core.ConverterMode
	modeSet    bool
	ranks      []core.PhysicalInput
	timings    []core.SampleTiming
	dmaRequest bool
	enabled    bool

	resetBusy, calBusy    int
	resetPolls, calPolls  int
	resetDone, calibrated bool
	running               bool
	round                 uint32
}

// New returns a Peripheral using DefaultGenerator.
func New() *Peripheral {
	return &Peripheral{
		CalibrationPolls: defaultCalibrationPolls,
		Generator:        DefaultGenerator,
		clocks:           make(map[core.ClockDomain]bool),
	}
}

// FailOn makes the next call of op return err (ErrInjected when err is nil).
func (p *Peripheral) FailOn(op Op, err error) {
	if err == nil {
		err = ErrInjected
	}
	p.failOn = op
	p.failErr = err
}

func (p *Peripheral) record(op Op, args ...uint32) error {
	p.calls = append(p.calls, Call{Op: op, Args: args})
	if p.failOn == op {
		p.failOn = ""
		return p.failErr
	}
	return nil
}

// Calls returns the recorded primitive calls in order.
func (p *Peripheral) Calls() []Call {
	out := make([]Call, len(p.calls))
	copy(out, p.calls)
	return out
}

// CallsOf returns the recorded calls of one op.
func (p *Peripheral) CallsOf(op Op) []Call {
	var out []Call
	for _, c := range p.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (p *Peripheral) SetPinMode(port core.Port, mask core.PinMask, mode core.PinMode) error {
	if err := p.record(OpSetPinMode, uint32(port), uint32(mask), uint32(mode)); err != nil {
		return err
	}
	if int(port) >= len(p.pins) || mode != core.PinModeAnalog {
		return ErrInvalidMode
	}
	p.pins[port] |= mask
	return nil
}

func (p *Peripheral) EnableClock(domain core.ClockDomain) error {
	if err := p.record(OpEnableClock, uint32(domain)); err != nil {
		return err
	}
	p.clocks[domain] = true
	return nil
}

func (p *Peripheral) ConfigureDMA(desc core.DMADescriptor) error {
	inc := uint32(desc.MemoryIncrement)
	if err := p.record(OpConfigureDMA, uint32(desc.Count), inc, uint32(desc.Width), uint32(desc.Mode), uint32(desc.Priority)); err != nil {
		return err
	}
	if !p.clocks[core.ClockDMA] {
		return ErrClockGated
	}
	if desc.Dest == nil || desc.Count == 0 || desc.Source != core.SourceConverterData || desc.Width != core.Width16 {
		return ErrInvalidDescriptor
	}
	p.desc = desc
	p.dest = unsafe.Slice(desc.Dest, desc.Count)
	p.pos = 0
	p.dmaArmed = true
	return nil
}

func (p *Peripheral) ConfigureConverter(mode core.ConverterMode) error {
	if err := p.record(OpConfigureConverter, uint32(mode.Scan), uint32(mode.Conversion), uint32(mode.Trigger), uint32(mode.Align), uint32(mode.Length)); err != nil {
		return err
	}
	if !p.clocks[core.ClockADC] {
		return ErrClockGated
	}
	if mode.Length == 0 || mode.Length > 16 {
		return ErrInvalidMode
	}
	p.mode = mode
	p.modeSet = true
	p.ranks = make([]core.PhysicalInput, mode.Length)
	p.timings = make([]core.SampleTiming, mode.Length)
	return nil
}

func (p *Peripheral) SetChannelRank(input core.PhysicalInput, rank uint8, timing core.SampleTiming) error {
	if err := p.record(OpSetChannelRank, uint32(input), uint32(rank), uint32(timing)); err != nil {
		return err
	}
	if !p.modeSet {
		return ErrNotConfigured
	}
	if rank == 0 || int(rank) > len(p.ranks) {
		return ErrInvalidRank
	}
	if input >= maxInputs {
		return ErrInvalidInput
	}
	p.ranks[rank-1] = input
	p.timings[rank-1] = timing
	return nil
}

func (p *Peripheral) EnableDMARequest() error {
	if err := p.record(OpEnableDMARequest); err != nil {
		return err
	}
	if !p.dmaArmed || !p.modeSet {
		return ErrNotConfigured
	}
	p.dmaRequest = true
	return nil
}

func (p *Peripheral) EnableConverter() error {
	if err := p.record(OpEnableConverter); err != nil {
		return err
	}
	if !p.modeSet {
		return ErrNotConfigured
	}
	p.enabled = true
	return nil
}

func (p *Peripheral) ResetCalibration() error {
	if err := p.record(OpResetCalibration); err != nil {
		return err
	}
	if !p.enabled {
		return ErrNotEnabled
	}
	p.resetBusy = p.CalibrationPolls
	p.resetDone = false
	return nil
}

func (p *Peripheral) CalibrationResetDone() bool {
	p.resetPolls++
	if p.resetBusy > 0 {
		p.resetBusy--
		return false
	}
	p.resetDone = true
	return true
}

func (p *Peripheral) StartCalibration() error {
	if err := p.record(OpStartCalibration); err != nil {
		return err
	}
	if !p.enabled || !p.resetDone {
		return ErrNotEnabled
	}
	p.calBusy = p.CalibrationPolls
	return nil
}

func (p *Peripheral) CalibrationDone() bool {
	p.calPolls++
	if p.calBusy > 0 {
		p.calBusy--
		return false
	}
	p.calibrated = true
	return true
}

func (p *Peripheral) StartConversion() error {
	if err := p.record(OpStartConversion); err != nil {
		return err
	}
	if !p.calibrated {
		return ErrNotCalibrated
	}
	if !p.dmaRequest {
		return ErrNotConfigured
	}
	p.running = true
	return nil
}

// Running reports whether conversions were started.
func (p *Peripheral) Running() bool {
	return p.running
}

// Descriptor returns the programmed DMA descriptor.
func (p *Peripheral) Descriptor() core.DMADescriptor {
	return p.desc
}

// Mode returns the programmed converter mode.
func (p *Peripheral) Mode() core.ConverterMode {
	return p.mode
}

// Ranks returns the rank table, rank 1 first.
func (p *Peripheral) Ranks() []core.PhysicalInput {
	out := make([]core.PhysicalInput, len(p.ranks))
	copy(out, p.ranks)
	return out
}

// Timings returns the sample timing per rank, rank 1 first.
func (p *Peripheral) Timings() []core.SampleTiming {
	out := make([]core.SampleTiming, len(p.timings))
	copy(out, p.timings)
	return out
}

// AnalogPins returns the pins configured as analog on port.
func (p *Peripheral) AnalogPins(port core.Port) core.PinMask {
	if int(port) >= len(p.pins) {
		return 0
	}
	return p.pins[port]
}

// CalibrationPollCounts returns how often each calibration phase was polled.
func (p *Peripheral) CalibrationPollCounts() (reset, cal int) {
	return p.resetPolls, p.calPolls
}

// Rounds returns the number of completed scan rounds.
func (p *Peripheral) Rounds() uint32 {
	return p.round
}

// RunRound converts every ranked input once and lets the DMA engine move the
// results, the way the hardware does between two software reads. It returns
// false if the converter was never started.
func (p *Peripheral) RunRound() bool {
	if !p.running {
		return false
	}
	length := len(p.ranks)
	if p.mode.Scan == core.ScanDisabled {
		length = 1
	}
	for r := 0; r < length; r++ {
		v := p.Generator(p.ranks[r], p.round)
		if p.mode.Align == core.AlignLeft {
			v <<= 4
		}
		p.dest[p.pos] = v
		if p.desc.MemoryIncrement == core.IncrementEnabled {
			p.pos++
		}
		if p.pos >= len(p.dest) {
			if p.desc.Mode != core.DMACircular {
				p.running = false
				p.round++
				return true
			}
			p.pos = 0
		}
	}
	p.round++
	return true
}
