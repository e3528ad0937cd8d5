package core

// priorityOrder is the fixed activation order. It decides DMA slot numbering and
// must stay stable across builds.
var priorityOrder = [ChannelCount]LogicalChannel{
	ChannelBattery,
	ChannelRSSI,
	ChannelExternal1,
	ChannelCurrent,
}

// Resolve computes the active channel set for board and req, in ascending slot order.
// Battery is always slot 0. A requested feature the board does not wire is skipped
// silently; the only failure is a contradiction in the board row itself.
func Resolve(board Board, req ActivationRequest) ([]ChannelConfig, error) {
	if err := board.Validate(); err != nil {
		return nil, err
	}

	channels := make([]ChannelConfig, 0, ChannelCount)
	for _, ch := range priorityOrder {
		if !req.wants(ch) {
			continue
		}
		m := board.Inputs[ch]
		if m == nil {
			DebugPrintln("[ADC] " + ch.String() + " not wired on " + board.Name + ", skipped")
			continue
		}
		channels = append(channels, ChannelConfig{
			Channel: ch,
			Enabled: true,
			Pin:     m.Pin,
			Input:   m.Input,
			Slot:    uint8(len(channels)),
			Timing:  DefaultSampleTiming,
		})
	}
	return channels, nil
}

// ResolveSelected resolves against the board this image was built for.
func ResolveSelected(req ActivationRequest) ([]ChannelConfig, error) {
	return Resolve(SelectedBoard, req)
}

// Skipped lists the channels req asked for that board cannot serve.
func Skipped(board Board, req ActivationRequest) []LogicalChannel {
	var out []LogicalChannel
	for _, ch := range priorityOrder {
		if req.wants(ch) && !board.Supports(ch) {
			out = append(out, ch)
		}
	}
	return out
}

// ScanRequired reports whether the channel set needs multi-channel scan and
// memory auto-increment.
func ScanRequired(channels []ChannelConfig) bool {
	return len(channels) > 1
}

// checkChannelSet verifies the slot invariant: enabled, dense, ascending from 0,
// each logical channel at most once.
func checkChannelSet(channels []ChannelConfig) error {
	if len(channels) == 0 || len(channels) > ChannelCount {
		return ErrInvalidChannelSet
	}
	var seen [ChannelCount]bool
	for i, c := range channels {
		if !c.Enabled || int(c.Slot) != i || !c.Channel.Valid() || seen[c.Channel] {
			return ErrInvalidChannelSet
		}
		seen[c.Channel] = true
	}
	return nil
}
