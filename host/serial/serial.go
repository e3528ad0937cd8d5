package serial

import (
	"io"
	"time"
)

// Port is the host end of the telemetry link.
// Native ports use github.com/tarm/serial; tests use an in-memory pipe.
type Port interface {
	io.ReadWriteCloser

	// Flush discards any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate. USB CDC ports (RP2040 targets) ignore it.
	Baud int

	// ReadTimeout bounds a single Read; zero blocks.
	ReadTimeout time.Duration
}

// DefaultBaud matches the STM32 firmware's telemetry UART.
const DefaultBaud = 115200

// DefaultConfig returns a configuration for the telemetry UART
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: 100 * time.Millisecond,
	}
}
