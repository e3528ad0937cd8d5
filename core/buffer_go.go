//go:build !tinygo

package core

// loadSample reads a slot (regular Go implementation, written by the simulator)
func loadSample(p *uint16) uint16 {
	return *p
}
