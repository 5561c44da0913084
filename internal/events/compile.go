package events

import "time"

// CompileStart is emitted before compiling a selection into a projection.
type CompileStart struct {
	Type          string
	OperationName string
}

// CompileFinish is emitted after a projection compilation.
type CompileFinish struct {
	Type          string
	OperationName string
	PathCount     int
	Err           error
	Duration      time.Duration
}
