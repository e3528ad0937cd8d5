//go:build rp2040

package main

import (
	"machine"
)

// InitUSB initializes USB CDC, which carries the telemetry frames
func InitUSB() {
	err := machine.Serial.Configure(machine.UARTConfig{})
	if err != nil {
		return
	}
}

// USBWriteBytes writes multiple bytes to USB
func USBWriteBytes(data []byte) (int, error) {
	return machine.Serial.Write(data)
}
