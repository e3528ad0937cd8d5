//go:build stm32f103

package main

import (
	"machine"
)

var uart = machine.DefaultUART

// InitUART configures the telemetry UART (USART1, PA9/PA10)
func InitUART() {
	err := uart.Configure(machine.UARTConfig{BaudRate: telemetryBaud})
	if err != nil {
		return
	}
}

// UARTWrite writes a whole frame
func UARTWrite(data []byte) error {
	written := 0
	for written < len(data) {
		n, err := uart.Write(data[written:])
		if err != nil {
			return err
		}
		written += n
	}
	return nil
}

// UARTPrintln writes a debug line
func UARTPrintln(s string) {
	uart.Write([]byte(s))
	uart.Write([]byte("\r\n"))
}
