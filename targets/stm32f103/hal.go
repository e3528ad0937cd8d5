//go:build stm32f103

package main

import (
	"errors"
	"runtime/volatile"
	"unsafe"

	"fcadc/core"
)

// STM32F103 peripheral memory map
const (
	rccBase   = 0x40021000
	gpioABase = 0x40010800
	gpioBBase = 0x40010C00
	gpioCBase = 0x40011000
	dma1Base  = 0x40020000
	adc1Base  = 0x40012400

	adcDRAddr = adc1Base + 0x4C
)

func reg(addr uintptr) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(addr))
}

var (
	rccCFGR    = reg(rccBase + 0x04)
	rccAHBENR  = reg(rccBase + 0x14)
	rccAPB2ENR = reg(rccBase + 0x18)

	// DMA1 channel 1 is hard-wired to ADC1 requests
	dmaCCR1   = reg(dma1Base + 0x08)
	dmaCNDTR1 = reg(dma1Base + 0x0C)
	dmaCPAR1  = reg(dma1Base + 0x10)
	dmaCMAR1  = reg(dma1Base + 0x14)

	adcCR1   = reg(adc1Base + 0x04)
	adcCR2   = reg(adc1Base + 0x08)
	adcSMPR1 = reg(adc1Base + 0x0C)
	adcSMPR2 = reg(adc1Base + 0x10)
	adcSQR1  = reg(adc1Base + 0x2C)
	adcSQR2  = reg(adc1Base + 0x30)
	adcSQR3  = reg(adc1Base + 0x34)
)

// RCC bits
const (
	rccAHBENR_DMA1EN   = 1 << 0
	rccAPB2ENR_IOPAEN  = 1 << 2
	rccAPB2ENR_ADC1EN  = 1 << 9
	rccCFGR_ADCPRE_Pos = 14
	rccCFGR_ADCPRE_Msk = 0x3
	rccCFGR_ADCPRE_6   = 0x2 // 72MHz PCLK2 / 6 = 12MHz, under the 14MHz limit
)

// DMA channel control bits
const (
	dmaCCR_EN      = 1 << 0
	dmaCCR_CIRC    = 1 << 5
	dmaCCR_MINC    = 1 << 7
	dmaCCR_PSIZE16 = 1 << 8
	dmaCCR_MSIZE16 = 1 << 10
	dmaCCR_PL_Pos  = 12
)

// ADC control bits
const (
	adcCR1_SCAN       = 1 << 8
	adcCR1_DUALMOD    = 0xF << 16
	adcCR2_ADON       = 1 << 0
	adcCR2_CONT       = 1 << 1
	adcCR2_CAL        = 1 << 2
	adcCR2_RSTCAL     = 1 << 3
	adcCR2_DMA        = 1 << 8
	adcCR2_ALIGN      = 1 << 11
	adcCR2_EXTSEL_SW  = 0x7 << 17
	adcCR2_EXTTRIG    = 1 << 20
	adcCR2_SWSTART    = 1 << 22
	adcSQR1_L_Pos     = 20
	adcMaxInput       = 17
	adcMaxRanks       = 16
	adcSampleTimeBits = 3
	adcRankBits       = 5
)

var (
	errUnsupportedPort = errors.New("unsupported gpio port")
	errUnsupportedMode = errors.New("unsupported converter mode")
	errBadDescriptor   = errors.New("unsupported dma descriptor")
	errBadRank         = errors.New("rank or input out of range")
)

// STM32ADCDriver implements core.ADCDriver on ADC1 + DMA1 channel 1.
type STM32ADCDriver struct{}

// NewSTM32ADCDriver returns the driver. It touches no hardware until BringUp.
func NewSTM32ADCDriver() *STM32ADCDriver {
	return &STM32ADCDriver{}
}

func gpioBase(port core.Port) (uintptr, error) {
	switch port {
	case core.PortA:
		return gpioABase, nil
	case core.PortB:
		return gpioBBase, nil
	case core.PortC:
		return gpioCBase, nil
	}
	return 0, errUnsupportedPort
}

// SetPinMode puts every pin in mask into analog input mode (CNF=00, MODE=00).
func (d *STM32ADCDriver) SetPinMode(port core.Port, mask core.PinMask, mode core.PinMode) error {
	base, err := gpioBase(port)
	if err != nil {
		return err
	}
	if mode != core.PinModeAnalog || mask > 0xFFFF {
		return errUnsupportedPort
	}

	// IOPAEN, IOPBEN, IOPCEN are consecutive
	rccAPB2ENR.SetBits(rccAPB2ENR_IOPAEN << port)

	crl := reg(base + 0x00)
	crh := reg(base + 0x04)
	for pin := uint32(0); pin < 16; pin++ {
		if mask&(1<<pin) == 0 {
			continue
		}
		if pin < 8 {
			crl.ReplaceBits(0, 0xF, uint8(pin*4))
		} else {
			crh.ReplaceBits(0, 0xF, uint8((pin-8)*4))
		}
	}
	return nil
}

func (d *STM32ADCDriver) EnableClock(domain core.ClockDomain) error {
	switch domain {
	case core.ClockDMA:
		rccAHBENR.SetBits(rccAHBENR_DMA1EN)
	case core.ClockADC:
		rccCFGR.ReplaceBits(rccCFGR_ADCPRE_6, rccCFGR_ADCPRE_Msk, rccCFGR_ADCPRE_Pos)
		rccAPB2ENR.SetBits(rccAPB2ENR_ADC1EN)
	default:
		return errUnsupportedMode
	}
	return nil
}

// ConfigureDMA programs and enables channel 1. Transfers only start once the
// converter raises its DMA request.
func (d *STM32ADCDriver) ConfigureDMA(desc core.DMADescriptor) error {
	if desc.Source != core.SourceConverterData || desc.Width != core.Width16 ||
		desc.Dest == nil || desc.Count == 0 || desc.Priority < core.PriorityLow || desc.Priority > core.PriorityVeryHigh {
		return errBadDescriptor
	}

	dmaCCR1.ClearBits(dmaCCR_EN)
	dmaCPAR1.Set(adcDRAddr)
	dmaCMAR1.Set(uint32(uintptr(unsafe.Pointer(desc.Dest))))
	dmaCNDTR1.Set(uint32(desc.Count))

	ccr := uint32(dmaCCR_PSIZE16 | dmaCCR_MSIZE16)
	ccr |= uint32(desc.Priority-core.PriorityLow) << dmaCCR_PL_Pos
	if desc.MemoryIncrement == core.IncrementEnabled {
		ccr |= dmaCCR_MINC
	}
	if desc.Mode == core.DMACircular {
		ccr |= dmaCCR_CIRC
	}
	dmaCCR1.Set(ccr)
	dmaCCR1.SetBits(dmaCCR_EN)
	return nil
}

func (d *STM32ADCDriver) ConfigureConverter(mode core.ConverterMode) error {
	if mode.Trigger != core.TriggerSoftware || mode.Length == 0 || mode.Length > adcMaxRanks {
		return errUnsupportedMode
	}

	cr1 := adcCR1.Get() &^ (adcCR1_DUALMOD | adcCR1_SCAN)
	if mode.Scan == core.ScanEnabled {
		cr1 |= adcCR1_SCAN
	}
	adcCR1.Set(cr1)

	cr2 := uint32(adcCR2_EXTSEL_SW)
	if mode.Conversion == core.ConversionContinuous {
		cr2 |= adcCR2_CONT
	}
	if mode.Align == core.AlignLeft {
		cr2 |= adcCR2_ALIGN
	}
	adcCR2.Set(cr2)

	adcSQR1.ReplaceBits(uint32(mode.Length-1), 0xF, adcSQR1_L_Pos)
	return nil
}

func (d *STM32ADCDriver) SetChannelRank(input core.PhysicalInput, rank uint8, timing core.SampleTiming) error {
	if input > adcMaxInput || rank == 0 || rank > adcMaxRanks || timing > core.SampleTime239_5 {
		return errBadRank
	}

	if input < 10 {
		adcSMPR2.ReplaceBits(uint32(timing), 0x7, uint8(input)*adcSampleTimeBits)
	} else {
		adcSMPR1.ReplaceBits(uint32(timing), 0x7, uint8(input-10)*adcSampleTimeBits)
	}

	switch {
	case rank <= 6:
		adcSQR3.ReplaceBits(uint32(input), 0x1F, (rank-1)*adcRankBits)
	case rank <= 12:
		adcSQR2.ReplaceBits(uint32(input), 0x1F, (rank-7)*adcRankBits)
	default:
		adcSQR1.ReplaceBits(uint32(input), 0x1F, (rank-13)*adcRankBits)
	}
	return nil
}

func (d *STM32ADCDriver) EnableDMARequest() error {
	adcCR2.SetBits(adcCR2_DMA)
	return nil
}

func (d *STM32ADCDriver) EnableConverter() error {
	adcCR2.SetBits(adcCR2_ADON)
	return nil
}

func (d *STM32ADCDriver) ResetCalibration() error {
	adcCR2.SetBits(adcCR2_RSTCAL)
	return nil
}

func (d *STM32ADCDriver) CalibrationResetDone() bool {
	return !adcCR2.HasBits(adcCR2_RSTCAL)
}

func (d *STM32ADCDriver) StartCalibration() error {
	adcCR2.SetBits(adcCR2_CAL)
	return nil
}

func (d *STM32ADCDriver) CalibrationDone() bool {
	return !adcCR2.HasBits(adcCR2_CAL)
}

func (d *STM32ADCDriver) StartConversion() error {
	adcCR2.SetBits(adcCR2_EXTTRIG | adcCR2_SWSTART)
	return nil
}
