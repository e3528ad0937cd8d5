//go:build tinygo

package core

import "runtime/volatile"

// loadSample reads a DMA-written slot. The compiler must not cache it.
func loadSample(p *uint16) uint16 {
	return volatile.LoadUint16(p)
}
