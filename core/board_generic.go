//go:build !naze && !cc3d && !olimexino && !rp2040

package core

// SelectedBoard is the board this firmware image is built for.
// Without a board tag the generic STM32F103 wiring is used.
var SelectedBoard = boardTable[BoardGenericF1]
