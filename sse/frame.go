// Package sse splits a raw byte stream into the frames of the Letta
// event-stream protocol: units separated by a blank line, with meaningful
// units carrying a "data: " prefix and the stream terminated by the
// literal "data: [DONE]" unit.
package sse

import "bytes"

// DonePayload is the literal payload of the terminal frame.
const DonePayload = "[DONE]"

var dataPrefix = []byte("data: ")

// Frame is one delimited unit of the inbound stream.
type Frame struct {
	// Raw is the full frame content with surrounding whitespace trimmed.
	Raw []byte

	// Data is the payload after the "data: " prefix. Nil for discarded
	// frames and for the terminal frame.
	Data []byte

	// Done is true for the terminal "data: [DONE]" frame.
	Done bool

	// Discard is true for frames that are not data frames (keep-alives,
	// comments, blank separators). No event is ever produced for them.
	Discard bool
}

// IsData reports whether the frame carries a classifiable payload.
func (f Frame) IsData() bool {
	return !f.Discard && !f.Done
}

// parseFrame classifies a trimmed raw frame.
func parseFrame(raw []byte) Frame {
	f := Frame{Raw: raw}
	if !bytes.HasPrefix(raw, dataPrefix) {
		f.Discard = true
		return f
	}
	payload := raw[len(dataPrefix):]
	if string(bytes.TrimSpace(payload)) == DonePayload {
		f.Done = true
		f.Discard = true
		return f
	}
	f.Data = payload
	return f
}
