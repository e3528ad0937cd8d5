//go:build rp2040

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
	framesSent               uint32
	frameErrors              uint32
	consecutiveWriteFailures uint32
)

func main() {
	// Clear any watchdog state left over from a previous boot
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitUSB()
	InitDebugUART()
	InitStatusLED()
	SetStatus(statusBooting)

	core.SetDebugWriter(DebugPrintln)
	core.SetDebugEnabled(true)
	core.DebugPrintln("[BOOT] board " + core.SelectedBoard.Name)

	core.SetADCDriver(NewRPADCDriver())
	if err := core.InitAnalog(activation); err != nil {
		core.DebugPrintln("[ADC] bring-up failed: " + err.Error())
		core.DumpTrace()
		SetStatus(statusFault)
		for {
			time.Sleep(time.Second)
		}
	}
	SetStatus(statusRunning)

	analog := core.GlobalAnalog()
	boardID := analog.Board().ID
	outputBuffer = telemetry.NewScratchOutput()

	var samples [core.ChannelCount]core.Sample
	var seq uint8
	next := GetHardwareUptime()
	for {
		if !reportDue(&next) {
			time.Sleep(100 * time.Microsecond)
			continue
		}

		snap := analog.Snapshot(samples[:0])
		outputBuffer.Reset()
		if err := telemetry.EncodeSnapshot(outputBuffer, seq, boardID, snap); err != nil {
			frameErrors++
			continue
		}
		seq++
		writeUSB()
	}
}

// writeUSB sends the pending frame. A host that is not listening makes writes
// fail; the frame is dropped rather than queued.
func writeUSB() {
	result := outputBuffer.Result()
	written := 0
	for written < len(result) {
		n, err := USBWriteBytes(result[written:])
		if err != nil || n == 0 {
			consecutiveWriteFailures++
			if consecutiveWriteFailures == 10 {
				core.DebugPrintln("[USB] host not reading, dropping frames")
			}
			outputBuffer.Reset()
			return
		}
		written += n
	}
	consecutiveWriteFailures = 0
	framesSent++
	outputBuffer.Reset()
}
