package core

import "errors"

// BoardID identifies a supported flight-controller board.
type BoardID uint8

const (
	BoardGenericF1 BoardID = iota
	BoardNaze
	BoardOlimexino
	BoardCC3D
	BoardRP2040
)

var (
	ErrUnknownBoard   = errors.New("unknown board")
	ErrNoBatteryInput = errors.New("board has no battery input")
	ErrDuplicateInput = errors.New("physical input mapped twice")
	ErrDuplicatePin   = errors.New("pin mapped twice")
	ErrInvalidPin     = errors.New("pin outside port range")
)

// Mapping wires a logical channel to a pin and the converter input behind it.
type Mapping struct {
	Pin   Pin
	Input PhysicalInput
}

// Board is one row of the board table. A nil entry in Inputs means the board
// has no physical input for that channel.
type Board struct {
	ID     BoardID
	Name   string
	Inputs [ChannelCount]*Mapping
}

// Supports reports whether the board wires the channel at all.
func (b Board) Supports(ch LogicalChannel) bool {
	return ch.Valid() && b.Inputs[ch] != nil
}

// Validate checks the row for build-time contradictions.
func (b Board) Validate() error {
	if b.Inputs[ChannelBattery] == nil {
		return ErrNoBatteryInput
	}
	for i := 0; i < ChannelCount; i++ {
		a := b.Inputs[i]
		if a == nil {
			continue
		}
		if !a.Pin.valid() {
			return ErrInvalidPin
		}
		for j := i + 1; j < ChannelCount; j++ {
			o := b.Inputs[j]
			if o == nil {
				continue
			}
			if a.Input == o.Input {
				return ErrDuplicateInput
			}
			if a.Pin == o.Pin {
				return ErrDuplicatePin
			}
		}
	}
	return nil
}

func pa(n uint8, in PhysicalInput) *Mapping {
	return &Mapping{Pin: Pin{Port: PortA, Number: n}, Input: in}
}

func pb(n uint8, in PhysicalInput) *Mapping {
	return &Mapping{Pin: Pin{Port: PortB, Number: n}, Input: in}
}

func gpio(n uint8, in PhysicalInput) *Mapping {
	return &Mapping{Pin: Pin{Port: PortBank0, Number: n}, Input: in}
}

// boardTable holds every supported board, indexed by BoardID.
//
// Naze32: VBAT on PA4 (ADC_IN4) behind a 10k:1k divider, RSSI on PA1 (ADC_IN1),
// current sense on PB1 (ADC_IN9), rev5 breaks PA5 (ADC_IN5) out as external1.
// CC3D: battery on S5_IN/PA0, current on PA1.
var boardTable = [...]Board{
	BoardGenericF1: {
		ID:   BoardGenericF1,
		Name: "generic-f1",
		Inputs: [ChannelCount]*Mapping{
			ChannelBattery: pa(4, 4),
			ChannelRSSI:    pa(1, 1),
			ChannelCurrent: pb(1, 9),
		},
	},
	BoardNaze: {
		ID:   BoardNaze,
		Name: "naze",
		Inputs: [ChannelCount]*Mapping{
			ChannelBattery:   pa(4, 4),
			ChannelRSSI:      pa(1, 1),
			ChannelExternal1: pa(5, 5),
			ChannelCurrent:   pb(1, 9),
		},
	},
	BoardOlimexino: {
		ID:   BoardOlimexino,
		Name: "olimexino",
		Inputs: [ChannelCount]*Mapping{
			ChannelBattery:   pa(4, 4),
			ChannelRSSI:      pa(1, 1),
			ChannelExternal1: pa(5, 5),
			ChannelCurrent:   pb(1, 9),
		},
	},
	BoardCC3D: {
		ID:   BoardCC3D,
		Name: "cc3d",
		Inputs: [ChannelCount]*Mapping{
			ChannelBattery: pa(0, 0),
			ChannelCurrent: pa(1, 1),
		},
	},
	BoardRP2040: {
		ID:   BoardRP2040,
		Name: "rp2040",
		Inputs: [ChannelCount]*Mapping{
			ChannelBattery:   gpio(26, 0),
			ChannelRSSI:      gpio(27, 1),
			ChannelExternal1: gpio(28, 2),
			ChannelCurrent:   gpio(29, 3),
		},
	},
}

// LookupBoard returns the table row for id.
func LookupBoard(id BoardID) (Board, error) {
	if int(id) >= len(boardTable) {
		return Board{}, ErrUnknownBoard
	}
	return boardTable[id], nil
}

// BoardByName returns the table row whose Name matches.
func BoardByName(name string) (Board, error) {
	for _, b := range boardTable {
		if b.Name == name {
			return b, nil
		}
	}
	return Board{}, ErrUnknownBoard
}

// Boards returns a copy of the board table in BoardID order.
func Boards() []Board {
	out := make([]Board, len(boardTable))
	copy(out, boardTable[:])
	return out
}

func (id BoardID) String() string {
	if b, err := LookupBoard(id); err == nil {
		return b.Name
	}
	return "board" + utoa(uint32(id))
}
