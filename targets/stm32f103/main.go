//go:build stm32f103

package main

import (
	"machine"
	"time"

	"fcadc/core"
	"fcadc/telemetry"
)

var (
	outputBuffer *telemetry.ScratchOutput

	// Debug counters
	framesSent  uint32
	frameErrors uint32
)

func main() {
	InitUART()

	core.SetDebugWriter(UARTPrintln)
	core.SetDebugEnabled(debugBoot)
	core.DebugPrintln("[BOOT] board " + core.SelectedBoard.Name)

	core.SetADCDriver(NewSTM32ADCDriver())
	if err := core.InitAnalog(activation); err != nil {
		// Bring-up faults are terminal: report once, then blink forever
		core.SetDebugEnabled(true)
		core.DebugPrintln("[ADC] bring-up failed: " + err.Error())
		core.DumpTrace()
		halt()
	}

	// The UART carries telemetry frames from here on
	core.SetDebugEnabled(false)

	analog := core.GlobalAnalog()
	boardID := analog.Board().ID
	outputBuffer = telemetry.NewScratchOutput()

	var samples [core.ChannelCount]core.Sample
	var seq uint8
	for {
		snap := analog.Snapshot(samples[:0])

		outputBuffer.Reset()
		if err := telemetry.EncodeSnapshot(outputBuffer, seq, boardID, snap); err != nil {
			frameErrors++
		} else if err := UARTWrite(outputBuffer.Result()); err != nil {
			frameErrors++
		} else {
			framesSent++
		}
		seq++

		time.Sleep(reportInterval)
	}
}

// halt blinks the status LED and never returns
func halt() {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(100 * time.Millisecond)
	}
}
