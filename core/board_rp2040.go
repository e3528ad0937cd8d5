//go:build rp2040

package core

// SelectedBoard is the board this firmware image is built for.
var SelectedBoard = boardTable[BoardRP2040]
