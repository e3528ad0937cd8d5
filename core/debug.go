package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TraceEvent captures one bring-up step for post-mortem analysis
type TraceEvent struct {
	EventType uint8  // Event type code
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtPinMode     = 1 // port, mask
	EvtClock       = 2 // clock domain
	EvtDMA         = 3 // count, memory increment
	EvtConverter   = 4 // length, scan
	EvtRank        = 5 // input, rank
	EvtEnable      = 6 // dma request / converter enable
	EvtCalibration = 7 // reset polls, calibration polls
	EvtStart       = 8 // channel count
	EvtFault       = 9 // event type of the failed step
)

const (
	TraceRingSize = 32 // Keep the last 32 events
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	traceRing     [TraceRingSize]TraceEvent
	traceRingHead uint8
	traceCount    uint32
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordTrace captures an event in the ring buffer. Always on, never blocks.
func RecordTrace(eventType uint8, value1, value2 uint32) {
	idx := traceRingHead
	traceRing[idx] = TraceEvent{
		EventType: eventType,
		Value1:    value1,
		Value2:    value2,
	}
	traceRingHead = (idx + 1) % TraceRingSize
	traceCount++
}

// TraceEvents returns the recorded events, oldest first.
func TraceEvents() []TraceEvent {
	var out []TraceEvent
	start := traceRingHead
	for i := uint8(0); i < TraceRingSize; i++ {
		evt := traceRing[(start+i)%TraceRingSize]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		out = append(out, evt)
	}
	return out
}

func traceName(eventType uint8) string {
	switch eventType {
	case EvtPinMode:
		return "PIN_MODE"
	case EvtClock:
		return "CLOCK"
	case EvtDMA:
		return "DMA"
	case EvtConverter:
		return "CONVERTER"
	case EvtRank:
		return "RANK"
	case EvtEnable:
		return "ENABLE"
	case EvtCalibration:
		return "CALIBRATION"
	case EvtStart:
		return "START"
	case EvtFault:
		return "FAULT!"
	default:
		return "UNKNOWN"
	}
}

// DumpTrace writes the trace ring through the debug writer, regardless of
// debugEnabled. Targets call it after a bring-up fault.
func DumpTrace() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[TRACE] === ADC bring-up trace ===")
	debugPrintln("[TRACE] events recorded: " + utoa(traceCount))
	for _, evt := range TraceEvents() {
		debugPrintln("[TRACE] " + traceName(evt.EventType) +
			" v1=" + utoa(evt.Value1) +
			" v2=" + utoa(evt.Value2))
	}
	debugPrintln("[TRACE] === End Dump ===")
}

// ClearTrace clears the trace ring
func ClearTrace() {
	for i := range traceRing {
		traceRing[i] = TraceEvent{}
	}
	traceRingHead = 0
	traceCount = 0
}
