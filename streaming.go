package lettastream

// StreamEvent is one increment of a streaming run.
// Each event carries either an answer increment or a terminal error.
type StreamEvent struct {
	// Text is a non-empty answer increment, in wire order.
	Text string

	// Err is the terminal run error, delivered as the final event before
	// the channel closes (nil for a clean completion, which is signalled
	// by the channel closing without an error event).
	Err error
}

// RunResult is the outcome of a blocking run.
type RunResult struct {
	// Answer is the accumulated answer text. On a terminal failure it
	// still holds whatever was delivered before the stream broke.
	Answer string

	// Err is the terminal run error, nil on success.
	Err error
}

// Failed reports whether the run ended in a terminal error.
func (r *RunResult) Failed() bool {
	return r.Err != nil
}
