//go:build olimexino

package core

// SelectedBoard is the board this firmware image is built for.
var SelectedBoard = boardTable[BoardOlimexino]
