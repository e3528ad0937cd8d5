//go:build naze

package core

// SelectedBoard is the board this firmware image is built for.
var SelectedBoard = boardTable[BoardNaze]
