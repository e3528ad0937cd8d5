//go:build rp2040

package main

import "fcadc/core"

// Feature selection baked into the image
var activation = core.ActivationRequest{
	EnableRSSI:         true,
	EnableCurrentMeter: true,
	EnableExternal1:    true,
}

const reportIntervalUs = 20000 // 50 frames per second
