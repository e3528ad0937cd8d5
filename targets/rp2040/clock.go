//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"
)

// RP2040 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerTIMERAWH = timerBase + 0x24 // Raw timer high word
	timerTIMERAWL = timerBase + 0x28 // Raw timer low word
)

var (
	timerRAWH = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWH)))
	timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
)

// GetHardwareUptime reads the free-running 1MHz timer
func GetHardwareUptime() uint64 {
	// Read high, low, high to detect a carry between the two words
	for {
		high1 := timerRAWH.Get()
		low := timerRAWL.Get()
		high2 := timerRAWH.Get()

		if high1 == high2 {
			return (uint64(high1) << 32) | uint64(low)
		}
	}
}

// reportDue reports whether the next telemetry frame is due and advances the deadline
func reportDue(next *uint64) bool {
	now := GetHardwareUptime()
	if now < *next {
		return false
	}
	*next += reportIntervalUs
	// Skip missed slots instead of bursting after a stall
	if *next <= now {
		*next = now + reportIntervalUs
	}
	return true
}
