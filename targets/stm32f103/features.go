//go:build stm32f103

package main

import (
	"time"

	"fcadc/core"
)

// Feature selection baked into the image. Flags the selected board cannot
// serve are ignored at bring-up.
var activation = core.ActivationRequest{
	EnableRSSI:         true,
	EnableCurrentMeter: true,
	EnableExternal1:    false,
}

const (
	// Print the channel plan and bring-up steps on the UART before telemetry starts
	debugBoot = false

	reportInterval = 50 * time.Millisecond
	telemetryBaud  = 115200
)
