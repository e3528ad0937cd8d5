//go:build cc3d

package core

// SelectedBoard is the board this firmware image is built for.
var SelectedBoard = boardTable[BoardCC3D]
