package core

// ResetAnalog drops the global subsystem so tests can start it again.
func ResetAnalog() {
	analog = nil
	analogStarted = false
	analogFault = nil
}
