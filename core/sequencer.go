package core

// Bring-up step names, reported in HardwareFault.Step
const (
	StepPinMode          = "pin_mode"
	StepClock            = "clock"
	StepDMA              = "dma"
	StepConverter        = "converter"
	StepChannelRank      = "channel_rank"
	StepDMARequest       = "dma_request"
	StepConverterEnable  = "converter_enable"
	StepCalibrationReset = "calibration_reset"
	StepCalibration      = "calibration"
	StepStart            = "start"
)

// BringUp programs the converter and DMA engine for channels so that buf is
// refreshed by hardware forever. It runs exactly once at boot and must not be
// reordered: pins, clocks, DMA, converter mode, ranks, DMA request + enable,
// calibration, start. Any primitive failure is a terminal HardwareFault.
func BringUp(drv ADCDriver, channels []ChannelConfig, buf *SampleBuffer) error {
	if err := checkChannelSet(channels); err != nil {
		return err
	}
	if buf == nil || buf.Len() != len(channels) {
		return ErrInvalidChannelSet
	}

	n := len(channels)
	multi := ScanRequired(channels)

	// Pins, one call per port
	var masks [portCount]PinMask
	for _, c := range channels {
		masks[c.Pin.Port] |= c.Pin.Mask()
	}
	for port, mask := range masks {
		if mask == 0 {
			continue
		}
		RecordTrace(EvtPinMode, uint32(port), uint32(mask))
		if err := drv.SetPinMode(Port(port), mask, PinModeAnalog); err != nil {
			return fault(EvtPinMode, StepPinMode, err)
		}
	}

	for _, clk := range [...]ClockDomain{ClockDMA, ClockADC} {
		RecordTrace(EvtClock, uint32(clk), 0)
		if err := drv.EnableClock(clk); err != nil {
			return fault(EvtClock, StepClock, err)
		}
	}

	desc := DMADescriptor{
		Source:          SourceConverterData,
		Dest:            buf.Base(),
		Count:           uint16(n),
		MemoryIncrement: IncrementDisabled,
		Width:           Width16,
		Mode:            DMACircular,
		Priority:        PriorityHigh,
	}
	if multi {
		desc.MemoryIncrement = IncrementEnabled
	}
	RecordTrace(EvtDMA, uint32(desc.Count), uint32(desc.MemoryIncrement))
	if err := drv.ConfigureDMA(desc); err != nil {
		return fault(EvtDMA, StepDMA, err)
	}

	mode := ConverterMode{
		Scan:       ScanDisabled,
		Conversion: ConversionContinuous,
		Trigger:    TriggerSoftware,
		Align:      AlignRight,
		Length:     uint8(n),
	}
	if multi {
		mode.Scan = ScanEnabled
	}
	RecordTrace(EvtConverter, uint32(mode.Length), uint32(mode.Scan))
	if err := drv.ConfigureConverter(mode); err != nil {
		return fault(EvtConverter, StepConverter, err)
	}

	// Rank k samples the channel in slot k-1
	for _, c := range channels {
		RecordTrace(EvtRank, uint32(c.Input), uint32(c.Slot+1))
		if err := drv.SetChannelRank(c.Input, c.Slot+1, c.Timing); err != nil {
			return fault(EvtRank, StepChannelRank, err)
		}
	}

	RecordTrace(EvtEnable, 0, 0)
	if err := drv.EnableDMARequest(); err != nil {
		return fault(EvtEnable, StepDMARequest, err)
	}
	if err := drv.EnableConverter(); err != nil {
		return fault(EvtEnable, StepConverterEnable, err)
	}

	// No timeout: the hardware always finishes under correct clocking.
	var resetPolls, calPolls uint32
	if err := drv.ResetCalibration(); err != nil {
		return fault(EvtCalibration, StepCalibrationReset, err)
	}
	for !drv.CalibrationResetDone() {
		resetPolls++
	}
	if err := drv.StartCalibration(); err != nil {
		return fault(EvtCalibration, StepCalibration, err)
	}
	for !drv.CalibrationDone() {
		calPolls++
	}
	RecordTrace(EvtCalibration, resetPolls, calPolls)

	if err := drv.StartConversion(); err != nil {
		return fault(EvtStart, StepStart, err)
	}
	RecordTrace(EvtStart, uint32(n), 0)

	DebugPrintln("[ADC] running, " + itoa(n) + " channel(s)")
	return nil
}

func fault(eventType uint8, step string, err error) error {
	RecordTrace(EvtFault, uint32(eventType), 0)
	DebugPrintln("[ADC] fault at " + step)
	return &HardwareFault{Step: step, Err: err}
}
