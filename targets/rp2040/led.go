//go:build rp2040

package main

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ws2812"
)

// Onboard WS2812 of RP2040-Zero style boards
const statusLEDPin = machine.GPIO16

var (
	statusBooting = color.RGBA{R: 0x10, G: 0x10, B: 0x00}
	statusRunning = color.RGBA{R: 0x00, G: 0x10, B: 0x00}
	statusFault   = color.RGBA{R: 0x20, G: 0x00, B: 0x00}
)

var statusLED ws2812.Device

// InitStatusLED configures the status LED pin
func InitStatusLED() {
	statusLEDPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	statusLED = ws2812.New(statusLEDPin)
}

// SetStatus shows c on the status LED
func SetStatus(c color.RGBA) {
	statusLED.WriteColors([]color.RGBA{c})
}
